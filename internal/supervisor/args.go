package supervisor

import (
	"fmt"
	"strings"

	"kernelgate/internal/settings"
)

const (
	notebookSubcommand = "notebook"
	loopbackHost       = "127.0.0.1"
	ipFlagPrefix       = `--ip="`
)

// launchArgs builds the kernel argument list: the notebook subcommand
// (prepended only when not already leading), the configured args, then the
// port and the two root-directory options.
func launchArgs(cfg settings.Settings, port int) []string {
	args := make([]string, 0, len(cfg.LaunchArgs)+4)
	if len(cfg.LaunchArgs) == 0 || cfg.LaunchArgs[0] != notebookSubcommand {
		args = append(args, notebookSubcommand)
	}
	args = append(args, cfg.LaunchArgs...)
	args = append(args,
		fmt.Sprintf("--port=%d", port),
		fmt.Sprintf(`--FileContentsManager.root_dir="%s/"`, cfg.FileSystemRoot),
		fmt.Sprintf(`--MappingKernelManager.root_dir="%s"`, cfg.ContentRoot),
	)
	return args
}

// bindHost scans the configured launch args for an explicit --ip="<value>"
// flag; the kernel binds loopback when none is present.
func bindHost(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, ipFlagPrefix) {
			continue
		}
		v := strings.TrimPrefix(arg, ipFlagPrefix)
		v = strings.TrimSuffix(v, `"`)
		if v != "" {
			return v
		}
	}
	return loopbackHost
}

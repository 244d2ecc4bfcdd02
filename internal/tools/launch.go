package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Launcher starts a named program detached from the assistant process.
type Launcher interface {
	Start(ctx context.Context, command string) error
}

// ExecLauncher launches via the OS process table. The child is not waited on;
// the assistant only cares that the launch itself succeeded.
type ExecLauncher struct{}

func (ExecLauncher) Start(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, command)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() // reap, ignore exit status
	return nil
}

// appAliases maps friendly spoken names to the executables they usually mean.
// Unrecognized names fall through as literal commands, same as typing them in
// a shell.
var appAliases = map[string]string{
	"notepad":    "gedit",
	"editor":     "gedit",
	"calculator": "gnome-calculator",
	"browser":    "firefox",
	"terminal":   "x-terminal-emulator",
	"files":      "nautilus",
	"explorer":   "nautilus",
}

// OpenApplicationTool resolves a spoken application name through the alias
// table and asks the launcher to start it.
func OpenApplicationTool(launcher Launcher) Definition {
	return Definition{
		Name:        "open_application",
		Description: "Opens a common application on the user's machine.",
		Params: []Param{
			{Name: "app_name", Description: "The application to open.", Required: true},
		},
		Notice: func(args map[string]string) string {
			return fmt.Sprintf("Using open_application tool to launch: %s", args["app_name"])
		},
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			name := args["app_name"]
			key := strings.ReplaceAll(strings.ToLower(name), " ", "")
			command, ok := appAliases[key]
			if !ok {
				command = key
			}
			if err := launcher.Start(ctx, command); err != nil {
				return "", fmt.Errorf("Error: The application '%s' could not be found or launched.", name)
			}
			return fmt.Sprintf("Successfully launched the application: %s.", name), nil
		},
	}
}

// ExecURLOpener opens URLs through the desktop's default handler.
type ExecURLOpener struct{}

func (ExecURLOpener) OpenURL(ctx context.Context, rawURL string) error {
	cmd := exec.CommandContext(ctx, "xdg-open", rawURL)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

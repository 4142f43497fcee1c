// Package cli parses edlgen's command-line arguments with pflag.
package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hankthetank27/edlgen/internal/config"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandDoctor  Command = "doctor"
	CommandDevices Command = "devices"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandDoctor:  {},
	CommandDevices: {},
	CommandVersion: {},
	CommandHelp:    {},
}

// Parsed is the result of parsing argv into a command plus its flags.
type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	Overrides  config.Overrides
}

// Parse reads argv (excluding the binary name) into a Parsed command.
// Unknown commands default to showing help with exit code 2, mirroring
// how the underlying pflag.FlagSet reports unknown flags.
func Parse(args []string) (Parsed, error) {
	if len(args) == 0 {
		return Parsed{Command: CommandHelp, ShowHelp: true}, nil
	}

	cmd := Command(args[0])
	if cmd == "-h" || cmd == "--help" {
		return Parsed{Command: CommandHelp, ShowHelp: true}, nil
	}
	if _, ok := validCommands[cmd]; !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", args[0])
	}
	if cmd == CommandHelp || cmd == CommandVersion {
		return Parsed{Command: cmd}, nil
	}

	fs := pflag.NewFlagSet(string(cmd), pflag.ContinueOnError)
	fs.Usage = func() {}

	configPath := fs.String("config", "", "config file path")
	title := fs.String("title", "", "EDL title and output filename base")
	dir := fs.String("dir", "", "output directory")
	port := fs.Int("port", 0, "control plane TCP port")
	deviceBackend := fs.String("device-backend", "", "audio backend (pulse, portaudio)")

	if err := fs.Parse(args[1:]); err != nil {
		return Parsed{}, err
	}

	parsed := Parsed{Command: cmd, ConfigPath: *configPath}
	if *title != "" {
		parsed.Overrides.Title = title
	}
	if *dir != "" {
		parsed.Overrides.Dir = dir
	}
	if *port != 0 {
		parsed.Overrides.Port = port
	}
	if *deviceBackend != "" {
		parsed.Overrides.DeviceBackend = deviceBackend
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s <command> [flags]

Commands:
  run       Start the recording session and control plane
  doctor    Run configuration and environment checks
  devices   List available input devices
  version   Print version information
  help      Show this help

Flags (run, doctor):
  --config PATH          Config file path (default: $XDG_CONFIG_HOME/edlgen/config.yaml)
  --title NAME            EDL title and output filename base
  --dir PATH              Output directory
  --port N                Control plane TCP port
  --device-backend NAME   Audio backend (pulse, portaudio)
  -h, --help              Show help
`, binaryName)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bestbefore/internal/version"
)

type versionOptions struct {
	format      string
	showHash    bool
	showMessage bool
	showDate    bool
	showFull    bool
}

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

func newVersionCmd(a *app) *cobra.Command {
	var opts versionOptions
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.format = strings.ToLower(opts.format)
			if opts.showFull {
				opts.showHash, opts.showMessage, opts.showDate = true, true, true
			}
			info := version.Current()
			switch opts.format {
			case "json":
				return renderVersionJSON(a.stdout, info, opts)
			case "pretty":
				colored, err := a.useColor(cmd, a.stdout)
				if err != nil {
					return err
				}
				renderVersionPretty(a.stdout, info, opts, colored)
				return nil
			}
			return fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
		},
	}
	cmd.Flags().BoolVar(&opts.showHash, "hash", false, "include git commit hash")
	cmd.Flags().BoolVar(&opts.showMessage, "message", false, "include git commit message")
	cmd.Flags().BoolVar(&opts.showDate, "date", false, "include build timestamp")
	cmd.Flags().BoolVar(&opts.showFull, "full", false, "show all recorded build metadata")
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(out io.Writer, info version.Info, opts versionOptions, colored bool) {
	v := info.Version
	if colored {
		v = version.Colored(v)
	}
	fmt.Fprintf(out, "bestbefore %s\n", v)
	if opts.showHash {
		fmt.Fprintf(out, "commit:  %s\n", valueOrUnknown(info.GitCommit))
	}
	if opts.showMessage {
		fmt.Fprintf(out, "message: %s\n", valueOrUnknown(info.GitMessage))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:   %s\n", valueOrUnknown(info.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, info version.Info, opts versionOptions) error {
	payload := versionPayload{Tool: "bestbefore", Version: info.Version}
	if opts.showHash {
		payload.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if opts.showMessage {
		payload.GitMessage = valueOrUnknown(info.GitMessage)
	}
	if opts.showDate {
		payload.BuildDate = valueOrUnknown(info.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

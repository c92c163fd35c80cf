package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bestbefore/internal/diag"
	"bestbefore/internal/directive"
	"bestbefore/internal/policy"
)

type evalOptions struct {
	expires string
	message string
	now     string
	subject string
	format  string
}

type evalPayload struct {
	Now       string `json:"now"`
	Review    string `json:"review,omitempty"`
	Expires   string `json:"expires,omitempty"`
	Action    string `json:"action"`
	Threshold string `json:"threshold,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func newEvalCmd(a *app) *cobra.Command {
	var opts evalOptions
	cmd := &cobra.Command{
		Use:   "eval [REVIEW]",
		Short: "Evaluate a single policy against the current date",
		Long: `Eval builds a policy from REVIEW (MM.YYYY) and the flags, evaluates it at the
effective date and prints the decision. It exits with status 1 when the
policy fails or is malformed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEval(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.expires, "expires", "", "hard expiry date (MM.YYYY)")
	f.StringVar(&opts.message, "message", "", "custom diagnostic message")
	f.StringVar(&opts.now, "now", "", "effective date as MM.YYYY (overrides $BESTBEFORE_DATE)")
	f.StringVar(&opts.subject, "subject", "code", "name of the annotated unit used in messages")
	f.StringVar(&opts.format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func (a *app) runEval(cmd *cobra.Command, args []string, opts evalOptions) error {
	if opts.format != "pretty" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", opts.format)
	}

	now, err := a.resolveNow(opts.now)
	if err != nil {
		return a.reportConfigError(err)
	}

	spec := policy.Spec{
		Expires:    opts.expires,
		HasExpires: cmd.Flags().Changed("expires"),
		Message:    opts.message,
		HasMessage: cmd.Flags().Changed("message"),
	}
	if len(args) == 1 {
		spec.Review, spec.HasReview = args[0], true
	}

	payload := evalPayload{Now: now.String()}
	p, err := policy.New(spec)
	if err != nil {
		payload.Action = "invalid"
		payload.Severity = diag.SevError.Label()
		payload.Code = directive.ConfigCode(err).ID()
		payload.Message = policy.ConfigMessage(err)
		if werr := a.writeEval(cmd, payload); werr != nil {
			return werr
		}
		return &exitError{code: 1}
	}

	d := policy.Evaluate(p, now)
	payload.Action = d.Action.String()
	payload.Review = p.Review().String()
	if expiry, ok := p.Expiry(); ok {
		payload.Expires = expiry.String()
	}
	if d.Action != policy.NoAction {
		payload.Threshold = d.Threshold.String()
	}
	r, report := policy.Render(d, p, opts.subject)
	if report {
		payload.Message = r.Message
		payload.Severity = diag.SevWarning.Label()
		payload.Code = diag.ExpPastReview.ID()
		if r.Fatal {
			payload.Severity = diag.SevError.Label()
			payload.Code = diag.ExpExpired.ID()
		}
	}
	if err := a.writeEval(cmd, payload); err != nil {
		return err
	}
	if r.Fatal {
		return &exitError{code: 1}
	}
	return nil
}

func (a *app) writeEval(cmd *cobra.Command, payload evalPayload) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	writeEvalPretty(a.stdout, payload)
	return nil
}

func writeEvalPretty(w io.Writer, p evalPayload) {
	if p.Code == "" {
		fmt.Fprintf(w, "ok: nothing to report at %s", p.Now)
		if p.Review != "" {
			fmt.Fprintf(w, " (review %s", p.Review)
			if p.Expires != "" {
				fmt.Fprintf(w, ", expires %s", p.Expires)
			}
			fmt.Fprint(w, ")")
		}
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", p.Severity, p.Code, p.Message)
}

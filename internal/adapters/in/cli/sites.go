package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bnema/sitectl/internal/adapters/in/cli/ui/components"
	"github.com/bnema/sitectl/internal/domain"
)

// Output formats accepted by list --output.
const (
	outputTable = "table"
	outputPlain = "plain"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func newAddCmd(r *runner) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add <domain> <backend> <http|auto|custom>",
		Short: "Add or replace a site",
		Long: `Render a server block proxying <domain> to <backend> and activate it.

Modes:
  http    plaintext only
  auto    publish plaintext, obtain a certificate via ACME, then switch to TLS
  custom  TLS with <domain>.crt and <domain>.key from the custom certificate directory`,
		Example: `  sitectl add example.com http://10.0.0.5:3000 http
  sitectl add app.example.com http://app:8080 auto
  sitectl add --dry-run shop.example.com http://127.0.0.1:9000 custom`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Rejected input must not touch configuration or the sites directory.
			req, err := domain.NewSiteRequest(args[0], args[1], args[2])
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				return runAdd(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), d, req, dryRun)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the configuration instead of writing it")

	return cmd
}

func runAdd(ctx context.Context, w, errW io.Writer, d *Deps, req domain.SiteRequest, dryRun bool) error {
	if dryRun {
		text, err := d.Sites.Preview(ctx, req)
		if err != nil {
			return err
		}
		if req.Mode == domain.ModeAuto {
			_ = cliWriteLine(errW, cliRenderWarning("auto mode: plaintext form shown, TLS is configured after the certificate is issued"))
		}
		_, err = io.WriteString(w, text)
		return err
	}

	if err := d.Sites.Add(ctx, req); err != nil {
		return err
	}

	msg := fmt.Sprintf("%s -> %s (%s)", req.Domain, req.Backend, req.Mode)
	return cliWriteLine(w, cliRenderSuccess("Site added: "+msg))
}

func newRemoveCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <domain>",
		Aliases: []string{"rm"},
		Short:   "Remove a site and reload nginx",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domainName := domain.NormalizeDomain(args[0])
			if err := domain.ValidateDomain(domainName); err != nil {
				cmd.SilenceUsage = true
				return err
			}
			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				if err := d.Sites.Remove(ctx, domainName); err != nil {
					return err
				}
				return cliWriteLine(cmd.OutOrStdout(), cliRenderSuccess("Site removed: "+domainName))
			})
		},
	}
}

func newListCmd(r *runner) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured sites",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(output)
			switch format {
			case outputTable, outputPlain, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (expected table, plain, json or yaml)", output)
			}

			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				sites, err := d.Sites.List(ctx)
				if err != nil {
					return err
				}
				return writeSites(cmd.OutOrStdout(), sites, format)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, plain, json or yaml")

	return cmd
}

func writeSites(w io.Writer, sites []domain.Site, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sites)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sites); err != nil {
			return err
		}
		return enc.Close()
	case outputPlain:
		for _, s := range sites {
			if err := cliWriteLine(w, s.Domain); err != nil {
				return err
			}
		}
		return nil
	}

	if len(sites) == 0 {
		return cliWriteLine(w, cliRenderMuted("No sites configured"))
	}
	return cliWriteLine(w, components.SiteTable(sites))
}

func newShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <domain>",
		Short: "Print the stored configuration of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				site, err := d.Sites.Show(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), site.Config)
				return err
			})
		},
	}
}

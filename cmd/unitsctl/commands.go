package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pkt.systems/unitsctl/internal/config"
	"pkt.systems/unitsctl/internal/dashboard"
	"pkt.systems/unitsctl/internal/shell"
	"pkt.systems/unitsctl/nestjson"
)

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse bindings like a file system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pal, err := a.colorPalette(a.options())
			if err != nil {
				return err
			}
			return a.withBackend(func(b backend) error {
				sh := shell.New(b, a.in, a.out, a.errOut,
					shell.WithLogger(a.log.WithName("shell")),
					shell.WithPalette(pal))
				return sh.Run(cmd.Context())
			})
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := listen
			if addr == "" {
				addr = a.cfg.Listen
			}
			return a.withBackend(func(b backend) error {
				srv := dashboard.New(b,
					dashboard.WithLogger(a.log.WithName("dashboard")),
					dashboard.WithUnitDomain(a.cfg.UnitDomain))
				return srv.ListenAndServe(cmd.Context(), addr)
			})
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config)")
	return cmd
}

func (a *app) palettesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palettes",
		Short: "List color palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range nestjson.PaletteNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out, err := yaml.Marshal(a.cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a key in the config file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadFile(a.cfgPath)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := config.Save(a.cfgPath, cfg); err != nil {
					return err
				}
				a.log.Info("config updated", "key", args[0], "path", a.cfgPath)
				return nil
			},
		},
	)
	return cmd
}

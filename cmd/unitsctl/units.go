package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/unitsctl/internal/bindings"
	"pkt.systems/unitsctl/internal/config"
	"pkt.systems/unitsctl/internal/rpc"
)

func (a *app) driversCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "List, load and unload drivers",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List loaded drivers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withBackend(func(b backend) error {
					resp, err := b.DriverDetails(cmd.Context())
					if err != nil {
						return err
					}
					return a.render(resp)
				})
			},
		},
		&cobra.Command{
			Use:   "load NAME VERSION FILE",
			Short: "Load a wasm or wat driver",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := readBinary(args[2])
				if err != nil {
					return err
				}
				return a.withBackend(func(b backend) error {
					resp, err := b.LoadDriver(cmd.Context(), args[0], args[1], data)
					if err != nil {
						return err
					}
					a.updateState(func(s *config.State) {
						s.LastDriver = rpc.DriverDetail{Name: resp.DriverName, Version: resp.DriverVersion}.Ref()
					})
					return a.render(resp)
				})
			},
		},
		&cobra.Command{
			Use:   "unload NAME VERSION",
			Short: "Unload a driver",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withBackend(func(b backend) error {
					resp, err := b.UnloadDriver(cmd.Context(), args[0], args[1])
					if err != nil {
						return err
					}
					return a.render(resp)
				})
			},
		},
	)
	return cmd
}

// readBinary reads a driver or program file and rejects anything that is
// neither wasm nor wat.
func readBinary(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if rpc.DetectBinaryType(path, data) == rpc.BinaryUnknown {
		return nil, fmt.Errorf("%s: not a wasm or wat file", path)
	}
	return data, nil
}

func (a *app) readText(inline, file string) (string, error) {
	switch {
	case inline != "" && file != "":
		return "", fmt.Errorf("use either the inline value or the file, not both")
	case file == "-":
		data, err := io.ReadAll(a.in)
		return strings.TrimRight(string(data), "\r\n"), err
	case file != "":
		data, err := os.ReadFile(file)
		return strings.TrimRight(string(data), "\r\n"), err
	}
	return inline, nil
}

func (a *app) bindCmd() *cobra.Command {
	var info, infoFile string
	cmd := &cobra.Command{
		Use:   "bind NAME VERSION PATH",
		Short: "Bind a path to a driver",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountInfo, err := a.readText(info, infoFile)
			if err != nil {
				return err
			}
			return a.withBackend(func(b backend) error {
				resp, err := b.Bind(cmd.Context(), rpc.BindRequest{
					DriverName:    args[0],
					DriverVersion: args[1],
					Path:          args[2],
					AccountInfo:   accountInfo,
				})
				if err != nil {
					return err
				}
				return a.render(resp)
			})
		},
	}
	cmd.Flags().StringVar(&info, "info", "", "account info, usually JSON")
	cmd.Flags().StringVar(&infoFile, "info-file", "", "read account info from a file, - for stdin")
	return cmd
}

func (a *app) unbindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unbind PATH",
		Short: "Remove the binding of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b backend) error {
				resp, err := b.Unbind(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.render(resp)
			})
		},
	}
}

func (a *app) executeCmd() *cobra.Command {
	var (
		programID, binaryFile string
		input, inputFile      string
		meta                  map[string]string
	)
	cmd := &cobra.Command{
		Use:   "execute (--program ID | --binary FILE)",
		Short: "Execute a submitted program or an inline binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := rpc.ExecutionRequest{ProgramID: programID}
			if binaryFile != "" {
				data, err := readBinary(binaryFile)
				if err != nil {
					return err
				}
				req.Binary = data
			}
			text, err := a.readText(input, inputFile)
			if err != nil {
				return err
			}
			req.Input = text
			return a.withBackend(func(b backend) error {
				resp, err := b.Execute(cmd.Context(), req, meta)
				if err != nil {
					return err
				}
				if programID != "" {
					a.updateState(func(s *config.State) { s.LastProgram = programID })
				}
				return a.render(resp)
			})
		},
	}
	cmd.Flags().StringVar(&programID, "program", "", "id of a submitted program")
	cmd.Flags().StringVar(&binaryFile, "binary", "", "wasm or wat file to run inline")
	cmd.Flags().StringVarP(&input, "input", "i", "", "program input")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "read program input from a file, - for stdin")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "call metadata as key=value, repeatable")
	cmd.MarkFlagsMutuallyExclusive("program", "binary")
	cmd.MarkFlagsOneRequired("program", "binary")
	return cmd
}

func (a *app) submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit NAME VERSION FILE",
		Short: "Submit a program for later execution",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readBinary(args[2])
			if err != nil {
				return err
			}
			return a.withBackend(func(b backend) error {
				resp, err := b.Submit(cmd.Context(), args[0], args[1], data)
				if err != nil {
					return err
				}
				a.updateState(func(s *config.State) { s.LastProgram = resp.ProgramID })
				return a.render(resp)
			})
		},
	}
}

func (a *app) programsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List submitted programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withBackend(func(b backend) error {
				resp, err := b.ListPrograms(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(resp)
			})
		},
	}
}

type userView struct {
	UnitID string               `json:"unitId"`
	Groups []bindings.UserGroup `json:"groups"`
}

type usersList struct {
	Users []string `json:"users"`
}

func (a *app) usersCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Show the bindings of a user, or list users",
		Long: `Without --user, shows the user selected last time, or lists the users
found in bound paths when none was selected. A given --user is remembered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				state, err := config.LoadState(config.StatePath(a.cfgPath))
				if err != nil {
					return err
				}
				user = state.SelectedUser
			} else {
				selected := user
				a.updateState(func(s *config.State) { s.SelectedUser = selected })
			}
			return a.withBackend(func(b backend) error {
				resp, err := b.ListResolver(cmd.Context())
				if err != nil {
					return err
				}
				if user == "" {
					users := bindings.Users(resp.PathMappings)
					if users == nil {
						users = []string{}
					}
					return a.render(usersList{Users: users})
				}
				return a.render(userView{
					UnitID: bindings.UnitID(user, a.cfg.UnitDomain),
					Groups: bindings.Group(user, resp.PathMappings),
				})
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user to show")
	return cmd
}

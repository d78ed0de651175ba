package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dukex/docflow/pkg/client"
	"github.com/dukex/docflow/pkg/ids"
	"github.com/dukex/docflow/pkg/log"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/store"
	"github.com/dukex/docflow/pkg/views"
	cli "github.com/urfave/cli/v3"
)

const defaultAPIURL = "http://localhost:9091"

var (
	errFlowIDRequired = errors.New("flow id is required")
	errInvalidNode    = errors.New(`node must look like "<type>=<config>"`)
)

// session holds the views of one command invocation.
type session struct {
	api      *client.Client
	flows    *store.Store
	term     *terminal
	list     *views.ListView
	composer *views.Composer
	editor   *views.Editor
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	open := func(command *cli.Command) (*session, error) {
		log.SetupWriter(os.Stderr, command.String("log-level"))

		logger := log.WithModule("flowctl")

		api, err := client.New(command.String("api-url"), client.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		term := newTerminal(in, out, logger)
		flows := store.New()
		gen := ids.New()

		return &session{
			api:      api,
			flows:    flows,
			term:     term,
			list:     views.NewListView(api, flows, term.ports(), logger),
			composer: views.NewComposer(api, flows, gen, term.ports(), logger),
			editor:   views.NewEditor(api, flows, gen, term.ports(), logger),
		}, nil
	}

	return &cli.Command{
		Name:                  "flowctl",
		Usage:                 "Create, run and share document flows",
		EnableShellCompletion: true,
		// node configs may contain commas
		DisableSliceFlagSeparator: true,
		Writer:                    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the docflow API",
				Value:   defaultAPIURL,
				Sources: cli.EnvVars("DOCFLOW_API_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			listCommand(open, out),
			showCommand(open, out),
			createCommand(open, out),
			importCommand(open, in),
			exportCommand(open),
			runCommand(open, out),
			deleteCommand(open, out),
			editCommand(open, out),
		},
	}
}

type opener func(command *cli.Command) (*session, error)

func flowID(command *cli.Command) (string, error) {
	id := strings.TrimSpace(command.Args().First())
	if id == "" {
		return "", errFlowIDRequired
	}

	return id, nil
}

// parseNodeArg parses "<type name>=<config>", e.g. "Read from Google Docs=notes".
func parseNodeArg(arg string) (models.NodeType, string, error) {
	name, config, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", errInvalidNode, arg)
	}

	nodeType, err := models.ParseNodeType(strings.TrimSpace(name))
	if err != nil {
		return 0, "", err
	}

	return nodeType, config, nil
}

func listCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List flows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "state",
				Usage: `Only show flows in this state, e.g. "In Progress"`,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := open(command)
			if err != nil {
				return err
			}

			var filter models.FlowState
			if name := command.String("state"); name != "" {
				filter, err = models.ParseFlowState(name)
				if err != nil {
					return err
				}
			}

			if err := s.list.Load(ctx); err != nil {
				return fmt.Errorf("error fetching flows: %w", err)
			}

			flows, _ := s.flows.All()

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tNODES\tSTATE")

			for _, flow := range flows {
				if filter != 0 && flow.DisplayState() != filter {
					continue
				}

				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", flow.ID, flow.Name, len(flow.Nodes), flow.DisplayState())
			}

			return w.Flush()
		},
	}
}

func showCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a flow as JSON",
		ArgsUsage: "<flow-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			id, err := flowID(command)
			if err != nil {
				return err
			}

			s, err := open(command)
			if err != nil {
				return err
			}

			flow, err := s.api.Get(ctx, id)
			if err != nil {
				return err
			}

			return printJSON(out, flow)
		},
	}
}

func createCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a flow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Flow name",
			},
			&cli.StringSliceFlag{
				Name:  "node",
				Usage: `Node as "<type>=<config>", in execution order`,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			s, err := open(command)
			if err != nil {
				return err
			}

			s.composer.SetMode(views.ModeCreate)
			s.composer.SetName(command.String("name"))

			for _, arg := range command.StringSlice("node") {
				nodeType, config, err := parseNodeArg(arg)
				if err != nil {
					return err
				}

				if err := s.composer.AddNode(nodeType, config); err != nil {
					return err
				}
			}

			flow, err := s.composer.Submit(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Created flow %s\n", flow.ID)

			return nil
		},
	}
}

func importCommand(open opener, in io.Reader) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create a flow from an exported JSON file",
		ArgsUsage: "<file|->",
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return errors.New("file is required")
			}

			var (
				data []byte
				err  error
			)

			if path == "-" {
				data, err = io.ReadAll(in)
			} else {
				data, err = os.ReadFile(path)
			}

			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			s, err := open(command)
			if err != nil {
				return err
			}

			s.composer.SetMode(views.ModeImport)

			_, err = s.composer.Import(ctx, data)

			return err
		},
	}
}

func exportCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a flow to <name>.json",
		ArgsUsage: "<flow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory",
				Value: ".",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			id, err := flowID(command)
			if err != nil {
				return err
			}

			s, err := open(command)
			if err != nil {
				return err
			}

			s.term.outDir = command.String("out")

			if err := s.list.Load(ctx); err != nil {
				return fmt.Errorf("error fetching flows: %w", err)
			}

			return s.list.Export(id)
		},
	}
}

func runCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a flow and print its result",
		ArgsUsage: "<flow-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			id, err := flowID(command)
			if err != nil {
				return err
			}

			s, err := open(command)
			if err != nil {
				return err
			}

			if err := s.list.Load(ctx); err != nil {
				return fmt.Errorf("error fetching flows: %w", err)
			}

			result, err := s.list.Run(ctx, id)
			if err != nil {
				return err
			}

			return printJSON(out, result)
		},
	}
}

func deleteCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a flow",
		ArgsUsage: "<flow-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			id, err := flowID(command)
			if err != nil {
				return err
			}

			s, err := open(command)
			if err != nil {
				return err
			}

			s.term.assumeYes = command.Bool("yes")

			deleted, err := s.list.Delete(ctx, id)
			if err != nil {
				return err
			}

			if deleted {
				fmt.Fprintf(out, "Deleted flow %s\n", id)
			}

			return nil
		},
	}
}

func editCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change the name or nodes of a flow",
		ArgsUsage: "<flow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "New flow name",
			},
			&cli.StringSliceFlag{
				Name:  "add-node",
				Usage: `Append a node as "<type>=<config>"`,
			},
			&cli.StringSliceFlag{
				Name:  "remove-node",
				Usage: "Remove the node with this id",
			},
			&cli.StringSliceFlag{
				Name:  "set-type",
				Usage: `Change a node type, as "<node-id>=<type>"`,
			},
			&cli.StringSliceFlag{
				Name:  "set-config",
				Usage: `Change a node config, as "<node-id>=<config>"`,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			id, err := flowID(command)
			if err != nil {
				return err
			}

			s, err := open(command)
			if err != nil {
				return err
			}

			if err := s.list.Load(ctx); err != nil {
				return fmt.Errorf("error fetching flows: %w", err)
			}

			s.list.Edit(id)

			if s.editor.Open(id) != views.EditorReady {
				return fmt.Errorf("%w: %s", views.ErrFlowNotFound, id)
			}

			if err := applyEdits(s.editor, command); err != nil {
				s.editor.Cancel()

				return err
			}

			if err := s.editor.Save(ctx); err != nil {
				return err
			}

			fmt.Fprintf(out, "Updated flow %s\n", id)

			return nil
		},
	}
}

func applyEdits(editor *views.Editor, command *cli.Command) error {
	if command.IsSet("name") {
		if err := editor.SetName(command.String("name")); err != nil {
			return err
		}
	}

	for _, nodeID := range command.StringSlice("remove-node") {
		if err := editor.RemoveNode(nodeID); err != nil {
			return err
		}
	}

	for _, arg := range command.StringSlice("set-type") {
		nodeID, name, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: %s", errInvalidNode, arg)
		}

		nodeType, err := models.ParseNodeType(name)
		if err != nil {
			return err
		}

		if err := editor.SetNodeType(nodeID, nodeType); err != nil {
			return err
		}
	}

	for _, arg := range command.StringSlice("set-config") {
		nodeID, config, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: %s", errInvalidNode, arg)
		}

		if err := editor.SetNodeConfig(nodeID, config); err != nil {
			return err
		}
	}

	for _, arg := range command.StringSlice("add-node") {
		nodeType, config, err := parseNodeArg(arg)
		if err != nil {
			return err
		}

		nodeID, err := editor.AddNode()
		if err != nil {
			return err
		}

		if err := editor.SetNodeType(nodeID, nodeType); err != nil {
			return err
		}

		if err := editor.SetNodeConfig(nodeID, config); err != nil {
			return err
		}
	}

	return nil
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

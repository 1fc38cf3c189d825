package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/validoc/validoc/pkg/cmd"
	"github.com/validoc/validoc/pkg/models"
)

func databaseURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "database-url",
		Usage:    "Database connection URL for persistence (file:// or redis://)",
		Required: true,
		Sources:  cli.EnvVars("DATABASE_URL"),
	}
}

func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List workflow definitions",
		Flags:   []cli.Flag{databaseURLFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			persistence := cmd.NewPersistence(command.String("database-url"))
			defer func() {
				_ = persistence.Close(ctx)
			}()

			definitions, err := persistence.DefinitionRepository().Definitions(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch definitions: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Found %d definitions\n", len(definitions))

			for _, definition := range definitions {
				_, _ = fmt.Fprintf(os.Stdout, "\n%s (%s)\n", definition.Name, definition.ID)
				_, _ = fmt.Fprintf(os.Stdout, "  State: %s  Version: %d\n", definition.State, definition.Version)
				_, _ = fmt.Fprintf(os.Stdout, "  Nodes: %d  Edges: %d  Statuses: %d\n",
					len(definition.Nodes), len(definition.Edges), len(definition.Statuses))
			}

			return nil
		},
	}
}

func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a workflow definition from a JSON file",
		ArgsUsage: "<definition.json>",
		Flags:     []cli.Flag{databaseURLFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("missing definition file argument")
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			definition, err := parseDefinition(raw)
			if err != nil {
				return err
			}

			persistence := cmd.NewPersistence(command.String("database-url"))
			defer func() {
				_ = persistence.Close(ctx)
			}()

			if err := persistence.DefinitionRepository().SaveDefinition(ctx, definition); err != nil {
				return fmt.Errorf("failed to save definition: %w", err)
			}

			slog.Info("Definition imported", "definition_id", definition.ID, "name", definition.Name)

			return nil
		},
	}
}

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate every stored workflow definition",
		Flags:   []cli.Flag{databaseURLFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			persistence := cmd.NewPersistence(command.String("database-url"))
			defer func() {
				_ = persistence.Close(ctx)
			}()

			definitions, err := persistence.DefinitionRepository().Definitions(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch definitions: %w", err)
			}

			validate := validator.New(validator.WithRequiredStructEnabled())

			_, _ = fmt.Fprintln(os.Stdout, "Definition Validation Results:")
			_, _ = fmt.Fprintln(os.Stdout, "==============================")

			invalid := 0

			for _, definition := range definitions {
				_, _ = fmt.Fprintf(os.Stdout, "\n%s (%s)\n", definition.Name, definition.ID)

				problems := checkDefinition(validate, definition)
				if len(problems) == 0 {
					_, _ = fmt.Fprintln(os.Stdout, "  OK")

					continue
				}

				invalid++

				for _, problem := range problems {
					_, _ = fmt.Fprintf(os.Stdout, "  INVALID: %s\n", problem)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d invalid definitions", invalid)
			}

			return nil
		},
	}
}

// parseDefinition checks the raw JSON against the definition schema before
// unmarshalling, so shape errors surface with field paths.
func parseDefinition(raw []byte) (*models.WorkflowDefinition, error) {
	definition, err := models.UnmarshalDefinition(raw)
	if err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if problems := checkDefinition(validate, definition); len(problems) > 0 {
		return nil, fmt.Errorf("invalid definition: %s", problems[0])
	}

	return definition, nil
}

func checkDefinition(validate *validator.Validate, definition *models.WorkflowDefinition) []string {
	problems := make([]string, 0)

	if err := validate.Struct(definition); err != nil {
		problems = append(problems, err.Error())
	}

	if definition.StartNode() == nil {
		problems = append(problems, "no start node")
	}

	if definition.DefaultStatus() == nil {
		problems = append(problems, "no statuses configured")
	}

	for _, edge := range definition.Edges {
		if definition.NodeByID(edge.Source) == nil || definition.NodeByID(edge.Target) == nil {
			problems = append(problems, fmt.Sprintf("edge %s references a missing node", edge.ID))
		}
	}

	return problems
}

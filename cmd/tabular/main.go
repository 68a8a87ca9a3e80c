package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabular/pkg/arrowwire"
	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/config"
	"github.com/ajitpratap0/tabular/pkg/dataview"
	"github.com/ajitpratap0/tabular/pkg/logger"
	"github.com/ajitpratap0/tabular/pkg/table"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	var configPath string

	root := &cobra.Command{
		Use:   "tabular",
		Short: "Tabular - In-memory columnar table engine",
		Long: `Tabular is an in-memory columnar table engine with nullable, chunked,
Arrow-compatible column storage and a group-by aggregation engine.`,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Tabular v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newSchemaCmd(&configPath))
	root.AddCommand(newAggCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(configPath string) (*config.Config, error) {
	cfg, err := config.Discover(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSchemaCmd(configPath *string) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema snapshot of a CSV-loaded table as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*configPath)
			if err != nil {
				return err
			}
			t, err := loadCSV(input, cfg)
			if err != nil {
				return err
			}
			snap, err := dataview.NewSnapshot(t)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input CSV file (numeric columns; empty cells are null)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newAggCmd(configPath *string) *cobra.Command {
	var (
		input  string
		key    string
		op     string
		n      int64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "agg",
		Short: "Group a CSV-loaded table by a key column and aggregate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*configPath)
			if err != nil {
				return err
			}
			t, err := loadCSV(input, cfg)
			if err != nil {
				return err
			}
			keyIdx, err := resolveColumn(t, key)
			if err != nil {
				return err
			}
			grouped, err := t.GroupBy(keyIdx)
			if err != nil {
				return err
			}
			result, err := runAggregate(grouped, op, n)
			if err != nil {
				return err
			}
			logger.Get().Info("aggregate computed",
				zap.String("op", op),
				zap.Int("groups", grouped.NumGroups()),
				zap.Int64("result_rows", result.NumRows()))
			if asJSON {
				return printJSON(result)
			}
			printTable(result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input CSV file (numeric columns; empty cells are null)")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Grouping key column (name or index)")
	cmd.Flags().StringVarP(&op, "op", "o", "count", "Aggregate: count|first|head|tail|min|max|sum|product")
	cmd.Flags().Int64VarP(&n, "rows", "n", 1, "Row count for head/tail")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a rendered table")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a CSV-loaded table as an Arrow IPC file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*configPath)
			if err != nil {
				return err
			}
			t, err := loadCSV(input, cfg)
			if err != nil {
				return err
			}
			f, err := os.Create(output) //nolint:gosec // G304: output path is user-controlled by design
			if err != nil {
				return err
			}
			defer f.Close()
			if err := arrowwire.WriteIPC(f, t); err != nil {
				return err
			}
			logger.Get().Info("exported arrow file",
				zap.String("path", output),
				zap.Int64("rows", t.NumRows()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input CSV file")
	cmd.Flags().StringVarP(&output, "output", "O", "", "Output Arrow IPC file")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runAggregate(g *table.GroupedTable, op string, n int64) (*table.Table, error) {
	switch strings.ToLower(op) {
	case "count":
		return g.Count()
	case "first":
		return g.First()
	case "head":
		return g.Head(n)
	case "tail":
		return g.Tail(n)
	case "min":
		return g.Min()
	case "max":
		return g.Max()
	case "sum":
		return g.Sum()
	case "product":
		return g.Product()
	default:
		return nil, fmt.Errorf("unknown aggregate %q", op)
	}
}

// loadCSV reads a headered CSV of numeric columns into a table. A column
// whose non-empty cells all parse as integers becomes int64, otherwise
// float64; empty cells are null rows.
func loadCSV(path string, cfg *config.Config) (*table.Table, error) {
	f, err := os.Open(path) //nolint:gosec // G304: input path is user-controlled by design
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return table.New()
	}
	header := records[0]
	rows := records[1:]

	var opts []column.Option
	if cfg.ChunkCapacity > 0 {
		opts = append(opts, column.WithChunkCapacity(cfg.ChunkCapacity))
	}

	cols := make([]column.AnyColumn, 0, len(header))
	for ci, name := range header {
		integral := true
		for _, row := range rows {
			cell := strings.TrimSpace(row[ci])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				integral = false
				break
			}
		}
		if integral {
			col := column.New[int64](name, opts...)
			for _, row := range rows {
				cell := strings.TrimSpace(row[ci])
				if cell == "" {
					col.AppendNull()
					continue
				}
				v, _ := strconv.ParseInt(cell, 10, 64)
				col.Append(&v)
			}
			cols = append(cols, col)
			continue
		}
		col := column.New[float64](name, opts...)
		for _, row := range rows {
			cell := strings.TrimSpace(row[ci])
			if cell == "" {
				col.AppendNull()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("column %q: cell %q is not numeric", name, cell)
			}
			col.Append(&v)
		}
		cols = append(cols, col)
	}
	return table.New(cols...)
}

func resolveColumn(t *table.Table, key string) (int, error) {
	if idx, err := strconv.Atoi(key); err == nil {
		return idx, nil
	}
	for i, name := range t.ColumnNames() {
		if name == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no column named %q", key)
}

func printJSON(t *table.Table) error {
	snap, err := dataview.NewSnapshot(t)
	if err != nil {
		return err
	}
	cur, err := snap.Cursor()
	if err != nil {
		return err
	}
	schema := snap.Columns()
	out := make([]map[string]interface{}, 0, t.NumRows())
	for cur.Next() {
		row := make(map[string]interface{}, len(schema))
		for ci, cs := range schema {
			v, valid, err := cur.Value(ci)
			if err != nil {
				return err
			}
			if valid {
				row[cs.Name] = v
			} else {
				row[cs.Name] = nil
			}
		}
		out = append(out, row)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printTable(t *table.Table) {
	names := t.ColumnNames()
	fmt.Println(strings.Join(names, "\t"))
	for row := int64(0); row < t.NumRows(); row++ {
		cells := make([]string, len(names))
		for ci := range names {
			col, _ := t.Column(ci)
			v, valid, err := col.ValueAny(row)
			switch {
			case err != nil:
				cells[ci] = "!"
			case !valid:
				cells[ci] = "null"
			default:
				cells[ci] = fmt.Sprintf("%v", v)
			}
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}

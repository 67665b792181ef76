package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"tedrecords/internal/cellopen"
	"tedrecords/internal/logging"
	"tedrecords/internal/recordstore"
	"tedrecords/internal/uistate"
	"tedrecords/internal/workflow"
)

// appLog is the process logger; it discards until main opens the log file.
var appLog = logr.Discard()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tedrecords [dbname] [table]",
	Short: "tedrecords is a record table editor for databases",
	Long: `tedrecords shows a database table as a grid of records. Click or press
Enter on a cell to edit it, on a record's name to open its page, or on the
↗ button next to the name to view it in a side drawer.

Examples:
  tedrecords crm companies
  tedrecords crm --open-in side-panel companies
  tedrecords test.db -c "select * from people"
  tedrecords step-input run.yaml step-2`,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runTedRecords,
}

var stepInputCmd = &cobra.Command{
	Use:   "step-input <run-file> <step-id>",
	Short: "Show the input a workflow step received",
	Long: `step-input renders the context every earlier step of a workflow run
handed to the given step, as a tree. The run file is YAML or JSON.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runStepInput,
}

var (
	database string
	host     string
	port     string
	username string
	password string
	command  string
	openIn   string
	vimMode  bool
	verbose  int
	limit    int

	stepInputView bool
)

func init() {
	rootCmd.Flags().BoolP("help", "", false, "help for tedrecords")
	rootCmd.Flags().StringVarP(&database, "database", "d", "", "Database name")
	rootCmd.Flags().StringVarP(&host, "host", "h", "", "Database host")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "Database port")
	rootCmd.Flags().StringVarP(&username, "username", "U", "", "Database username")
	rootCmd.Flags().StringVarP(&password, "password", "W", "", "Database password")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "SELECT over a single table to open")
	rootCmd.Flags().StringVar(&openIn, "open-in", "", "Where records open: record-page or side-panel")
	rootCmd.Flags().BoolVar(&vimMode, "vim", false, "Vim-style navigation keys")
	rootCmd.Flags().IntVar(&limit, "limit", DefaultRecordLimit, "Maximum number of records to load")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Log more (repeat for debug output)")

	stepInputCmd.Flags().BoolVar(&stepInputView, "view", false, "Show the tree in a scrollable terminal view")
	rootCmd.AddCommand(stepInputCmd)
}

func runTedRecords(cmd *cobra.Command, args []string) error {
	configDir, err := getConfigDir()
	if err != nil {
		return err
	}

	log, err := logging.Open(configDir, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging disabled: %v\n", err)
		log = logging.Discard()
	}
	defer log.Close()
	appLog = log.Logger

	settingsPath := filepath.Join(configDir, "settings.json")
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if !settings.FirstRunComplete {
		settings.FirstRunComplete = true
		if err := SaveSettings(settingsPath, settings); err != nil {
			appLog.Error(err, "could not save settings")
		}
		fmt.Fprintf(os.Stderr, "Crash reporting is off. Set \"telemetry_enabled\": true in %s to turn it on.\n", settingsPath)
	}

	InitBreadcrumbs(100)
	if settings.TelemetryEnabled && sentryDSN != "" {
		if err := InitSentry(sentryDSN); err != nil {
			appLog.Error(err, "sentry disabled")
		} else {
			defer FlushAndShutdown()
		}
	}

	config := &Config{
		Database: database,
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Command:  command,
		VimMode:  vimMode,
		Limit:    limit,
	}

	var dbName, table string
	if len(args) >= 1 {
		dbName = args[0]
	}
	if len(args) >= 2 {
		table = args[1]
	}
	if dbName == "" {
		dbName = database
	}
	if dbName == "" {
		return errors.New("must specify a database name")
	}

	preference := settings.OpenRecordInPreference()
	watchPreference := true

	fileConfig, err := loadConfig()
	if err != nil {
		return err
	}
	if named, ok := fileConfig.GetDatabase(dbName); ok {
		if err := named.apply(config); err != nil {
			return err
		}
		if named.OpenRecordIn != "" {
			if preference, err = cellopen.ParseOpenRecordIn(named.OpenRecordIn); err != nil {
				return fmt.Errorf("database %s: %w", dbName, err)
			}
			watchPreference = false
		}
	}
	if config.Database == "" {
		config.Database = dbName
	}

	if openIn != "" {
		if preference, err = cellopen.ParseOpenRecordIn(openIn); err != nil {
			return err
		}
		watchPreference = false
	}

	var query *recordstore.Query
	if config.Command != "" {
		if query, err = recordstore.ParseQuery(config.Command); err != nil {
			return err
		}
		table = query.Table
	}

	appLog.Info("starting", "database", dbName, "table", table, "openIn", preference.String())
	return runEditor(cmd.Context(), config, dbName, table, query, uistate.New(preference), watchPreference, appLog)
}

func runStepInput(cmd *cobra.Command, args []string) error {
	run, err := workflow.LoadRun(args[0])
	if err != nil {
		return err
	}

	if stepInputView {
		return showStepInputDetail(run, args[1])
	}

	out, err := workflow.RenderStepInputDetail(run, args[1])
	if err != nil {
		return fmt.Errorf("step %s: %w", args[1], err)
	}
	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/codeadvisor/internal/analysis"
	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/cli"
	"github.com/Veraticus/codeadvisor/internal/config"
	"github.com/Veraticus/codeadvisor/internal/dataset"
	"github.com/Veraticus/codeadvisor/internal/inference"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/modelstore"
	"github.com/Veraticus/codeadvisor/internal/training"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier on labeled code metrics",
		Long: `Train a classifier on a CSV of code metrics with an is_optimal label column.

The data is split into training and test partitions with a seeded shuffle, the
classifier is evaluated on both and saved with its metrics as
{output}_{YYYYMMDD_HHMMSS}.model.`,
		RunE: runTrain,
	}

	cmd.Flags().StringP("data", "d", "", "Labeled training data (CSV)")
	cmd.Flags().StringP("model-type", "t", string(classifier.KindEnsemble), "Model family (ensemble, tree)")
	cmd.Flags().StringP("output", "o", "code_quality", "Model name, or directory/name, to save as")
	cmd.Flags().Float64("test-fraction", config.DefaultTestFraction, "Share of rows held out for evaluation")
	cmd.Flags().Int64("seed", config.DefaultSeed, "Seed for the split and the classifier")
	cmd.Flags().Int("trees", config.DefaultTrees, "Number of trees in an ensemble")
	cmd.Flags().Int("max-depth", 0, "Maximum tree depth (0 = unlimited)")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")
	_ = cmd.MarkFlagRequired("data")

	_ = viper.BindPFlag("training.test_fraction", cmd.Flags().Lookup("test-fraction"))
	_ = viper.BindPFlag("training.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("training.trees", cmd.Flags().Lookup("trees"))
	_ = viper.BindPFlag("training.max_depth", cmd.Flags().Lookup("max-depth"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	dataPath, _ := cmd.Flags().GetString("data")
	kindName, _ := cmd.Flags().GetString("model-type")
	output, _ := cmd.Flags().GetString("output")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	kind, err := classifier.ParseKind(kindName)
	if err != nil {
		return err
	}

	table, err := dataset.ReadFile(config.ExpandPath(dataPath))
	if err != nil {
		return err
	}

	dir, name := config.SplitModelOutput(output, settings.ModelsDir)
	store := modelstore.NewStore(dir)
	session := inference.NewSession(store, slog.Default())

	opts := training.Options{
		Kind:         kind,
		TestFraction: settings.TestFraction,
		Seed:         settings.Seed,
		Trees:        settings.Trees,
		MaxDepth:     settings.MaxDepth,
		Workers:      settings.Workers,
	}

	var progress *cli.Progress
	if kind == classifier.KindEnsemble && !noProgress {
		progress = cli.NewProgress(cmd.ErrOrStderr(), settings.Trees, "Fitting trees...")
		opts.OnTreeFitted = progress.Step
	}

	result, err := session.Train(table, opts)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return fmt.Errorf("training on %s failed: %w", dataPath, err)
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("training interrupted: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, analysis.NewCLIFormatter().FormatTraining(result.Metrics))

	path, err := session.Save(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Model saved to %s", path)))

	recordTrainingRun(cmd.Context(), settings, &model.TrainingRun{
		ModelName:     name,
		ModelPath:     path,
		ModelKind:     string(kind),
		DataPath:      dataPath,
		Seed:          settings.Seed,
		Rows:          table.Len(),
		TrainAccuracy: result.Metrics.TrainAccuracy,
		TestAccuracy:  result.Metrics.TestAccuracy,
	})
	return nil
}

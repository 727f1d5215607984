package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "conceptviz",
	Short: "Interactive visualizer for machine-learning concepts",
	Long: `conceptviz serves a browser dashboard of animated, toy-scale ML
visualizations: SVD, PCA on digits, gradient descent, convolution,
recurrent sequences, and attention.

All live computation is deterministic closed-form math; the only external
data is the PCA fixture produced offline by the precompute command.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; flags beat env, env beats the default.
		godotenv.Load()

		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			if env := os.Getenv("PORT"); env != "" {
				if p, err := strconv.Atoi(env); err == nil {
					port = p
				}
			}
		}
		runWeb(port)
		return nil
	},
}

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Fit PCA + k-NN over an MNIST subset and write the static fixture",
	Long: `precompute reads MNIST IDX files (optionally gzipped), fits PCA over a
training subset, evaluates reconstructions and k-NN accuracy at each preset
rank, and writes pca_fixture.json plus an explained-variance chart into the
static directory. The web server only ever reads the JSON output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := precomputeConfig{}
		cfg.ImagesPath, _ = cmd.Flags().GetString("images")
		cfg.LabelsPath, _ = cmd.Flags().GetString("labels")
		cfg.TrainCount, _ = cmd.Flags().GetInt("train")
		cfg.TestCount, _ = cmd.Flags().GetInt("test")
		cfg.OutDir, _ = cmd.Flags().GetString("out")
		if cfg.ImagesPath == "" || cfg.LabelsPath == "" {
			return fmt.Errorf("--images and --labels are required")
		}
		return runPrecompute(cfg)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP port")

	precomputeCmd.Flags().String("images", "", "path to MNIST images IDX file (.gz accepted)")
	precomputeCmd.Flags().String("labels", "", "path to MNIST labels IDX file (.gz accepted)")
	precomputeCmd.Flags().Int("train", 600, "training subset size")
	precomputeCmd.Flags().Int("test", 100, "held-out subset size")
	precomputeCmd.Flags().String("out", "static", "output directory")

	rootCmd.AddCommand(serveCmd, precomputeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

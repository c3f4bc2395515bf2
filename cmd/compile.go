package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v1 "github.com/kubev2v/logql-transpiler/api/v1"
	"github.com/kubev2v/logql-transpiler/internal/config"
	"github.com/kubev2v/logql-transpiler/pkg/query"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func NewCompileCommand(cfg *config.Configuration) *cobra.Command {
	var (
		req    v1.CompileRequest
		output string
	)

	compileCmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Print the ClickHouse SQL of a LogQL query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			tr, err := validatedTranspiler(cfg)
			if err != nil {
				return err
			}

			req.Query = args[0]
			params, err := req.ToParams()
			if err != nil {
				return err
			}

			res, err := tr.Transpile(params)
			if err != nil {
				return err
			}

			stages := query.StageNames(res.Stream)
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), v1.CompileResponse{
					Query:    res.Query,
					Matrix:   res.Matrix,
					Duration: res.Duration,
					Stream:   stages,
				})
			}

			w := cmd.OutOrStdout()
			label := color.New(color.FgCyan)
			label.Fprint(w, "matrix:   ")
			fmt.Fprintln(w, res.Matrix)
			label.Fprint(w, "duration: ")
			fmt.Fprintf(w, "%dms\n", res.Duration)
			writeStages(w, stages)
			fmt.Fprintln(w, res.Query)
			return nil
		},
	}

	flags := compileCmd.Flags()
	flags.StringVar(&req.Start, "start", "", "Range start: RFC3339, unix nanoseconds or unix seconds")
	flags.StringVar(&req.End, "end", "", "Range end: RFC3339, unix nanoseconds or unix seconds")
	flags.StringVar(&req.Step, "step", "", "Query step in seconds or as a duration")
	flags.StringVar((*string)(&req.Direction), "direction", string(v1.Backward), "Sort direction: forward or backward")
	flags.Uint64Var(&req.Limit, "limit", 0, "Row limit")
	flags.StringVarP(&output, "output", "o", outputText, "Output format: text or json")
	registerTranspilerFlags(flags, cfg)

	return compileCmd
}

func NewTailCommand(cfg *config.Configuration) *cobra.Command {
	var output string

	tailCmd := &cobra.Command{
		Use:   "tail <query>",
		Short: "Print the ClickHouse SQL reading the last seconds of a log query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			tr, err := validatedTranspiler(cfg)
			if err != nil {
				return err
			}

			res, err := tr.TranspileTail(args[0])
			if err != nil {
				return err
			}

			stages := query.StageNames(res.Stream)
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), v1.TailResponse{Query: res.Query, Stream: stages})
			}

			writeStages(cmd.OutOrStdout(), stages)
			fmt.Fprintln(cmd.OutOrStdout(), res.Query)
			return nil
		},
	}

	tailCmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text or json")
	registerTranspilerFlags(tailCmd.Flags(), cfg)

	return tailCmd
}

func checkOutput(output string) error {
	if output != outputText && output != outputJSON {
		return fmt.Errorf("invalid output %q: must be one of: %s, %s", output, outputText, outputJSON)
	}
	return nil
}

func writeStages(w io.Writer, stages []string) {
	if len(stages) == 0 {
		return
	}
	color.New(color.FgCyan).Fprint(w, "stream:   ")
	fmt.Fprintln(w, strings.Join(stages, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

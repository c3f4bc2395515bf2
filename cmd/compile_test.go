package cmd

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/fatih/color"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	v1 "github.com/kubev2v/logql-transpiler/api/v1"
	"github.com/kubev2v/logql-transpiler/internal/config"
	srvErrors "github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

var _ = Describe("Compile Commands", func() {
	var (
		cfg *config.Configuration
		out *bytes.Buffer
	)

	execute := func(args ...string) error {
		root := NewRootCommand(cfg)
		root.SetOut(out)
		root.SetErr(out)
		root.SetArgs(args)
		return root.Execute()
	}

	BeforeEach(func() {
		color.NoColor = true
		viper.Reset()
		cfg = config.NewConfigurationWithOptionsAndDefaults()
		out = new(bytes.Buffer)
	})

	AfterEach(func() {
		viper.Reset()
	})

	Describe("compile", func() {
		It("should print the compiled query as JSON", func() {
			start := time.Unix(1700000000, 0)
			end := start.Add(time.Hour)

			err := execute("compile", `count_over_time({app="foo"}[5m])`,
				"--start", "1700000000",
				"--end", end.Format(time.RFC3339),
				"--database", "logs",
				"-o", "json",
			)
			Expect(err).ToNot(HaveOccurred())

			expected, err := transpiler.New(transpiler.WithDatabase("logs")).Transpile(transpiler.Params{
				Query:     `count_over_time({app="foo"}[5m])`,
				Start:     time.Unix(0, 1700000000),
				End:       end,
				Direction: transpiler.Backward,
			})
			Expect(err).ToNot(HaveOccurred())

			var response v1.CompileResponse
			Expect(json.Unmarshal(out.Bytes(), &response)).To(Succeed())
			Expect(response.Query).To(Equal(expected.Query))
			Expect(response.Query).To(ContainSubstring("FROM logs.samples"))
			Expect(response.Matrix).To(BeTrue())
			Expect(response.Duration).To(Equal(int64(300000)))
		})

		It("should print the query and its stages as text", func() {
			err := execute("compile", `{app="foo"} | line_format "{{.app}}"`, "--start", "1", "--end", "2")
			Expect(err).ToNot(HaveOccurred())

			Expect(out.String()).To(ContainSubstring("matrix:   false"))
			Expect(out.String()).To(ContainSubstring("stream:   line_format"))
			Expect(out.String()).To(ContainSubstring("FROM sel_a"))
		})

		It("should expand macros", func() {
			err := execute("compile", `errors_of(api)`,
				"--macro", `errors_of={app="{{ index .Args 0 }}"} |= "error"`,
				"--start", "1", "--end", "2",
				"-o", "json",
			)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.String()).To(ContainSubstring(`position(string, 'error') != 0`))
		})

		It("should return compiler errors", func() {
			err := execute("compile", `{app="foo"} | label_format a="b"`)
			Expect(srvErrors.IsUnsupportedConstructError(err)).To(BeTrue())
		})

		It("should reject invalid flags", func() {
			Expect(execute("compile", `{a="b"}`, "--step", "soon")).ToNot(Succeed())
			Expect(execute("compile", `{a="b"}`, "-o", "yaml")).ToNot(Succeed())
			Expect(execute("compile", `{a="b"}`, "--database", "x;y")).ToNot(Succeed())
			Expect(execute("compile")).ToNot(Succeed())
		})
	})

	Describe("tail", func() {
		It("should print the tail query", func() {
			err := execute("tail", `{app="foo"}`, "-o", "json")
			Expect(err).ToNot(HaveOccurred())

			expected, err := transpiler.New().TranspileTail(`{app="foo"}`)
			Expect(err).ToNot(HaveOccurred())

			var response v1.TailResponse
			Expect(json.Unmarshal(out.Bytes(), &response)).To(Succeed())
			Expect(response.Query).To(Equal(expected.Query))
		})

		It("should reject aggregations", func() {
			err := execute("tail", `rate({app="foo"}[1m])`)
			Expect(err).To(MatchError(ContainSubstring("Only raw logs are supported")))
		})
	})
})

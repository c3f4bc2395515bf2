package macros_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/logql"
	"github.com/kubev2v/logql-transpiler/pkg/macros"
)

func call(q string) *logql.Node {
	tree, err := logql.Parse(q)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	n := tree.Root.Child(logql.RuleUserMacro)
	ExpectWithOffset(1, n).ToNot(BeNil())
	return n
}

func mustMacro(name, body string) *macros.TemplateMacro {
	m, err := macros.NewTemplateMacro(name, body)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	return m
}

var _ = Describe("TemplateMacro", func() {
	type testCase struct {
		name   string
		body   string
		input  string
		output string
	}

	tests := []testCase{
		{
			name:   "everything",
			body:   `{job=~".+"}`,
			input:  `everything()`,
			output: `{job=~".+"}`,
		},
		{
			name:   "errors_of",
			body:   `{app={{ index .Args 0 | quote }}} |= "error"`,
			input:  `errors_of("api")`,
			output: `{app="api"} |= "error"`,
		},
		{
			name:   "rate_of",
			body:   `rate({app="{{ index .Args 0 }}"}[{{ index .Args 1 }}])`,
			input:  `rate_of(web, 5m)`,
			output: `rate({app="web"}[5m])`,
		},
		{
			name:   "named",
			body:   `{macro="{{ .Name }}", n="{{ len .Args }}"}`,
			input:  `named(1, "two")`,
			output: `{macro="named", n="2"}`,
		},
	}

	for _, test := range tests {
		test := test
		It("should expand: "+test.input, func() {
			m := mustMacro(test.name, test.body)
			Expect(m.RuleName()).To(Equal(test.name))

			out, err := m.Stringify(call(test.input))
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal(test.output))

			_, err = logql.Parse(out)
			Expect(err).ToNot(HaveOccurred())
		})
	}

	It("should accept the call node itself", func() {
		m := mustMacro("everything", `{job=~".+"}`)
		out, err := m.Stringify(call(`everything()`).Child("everything"))
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal(`{job=~".+"}`))
	})

	It("should fail when the template needs missing arguments", func() {
		m := mustMacro("errors_of", `{app="{{ index .Args 0 }}"}`)
		_, err := m.Stringify(call(`errors_of()`))
		Expect(srvErrors.IsMacroResolutionError(err)).To(BeTrue())
	})

	It("should fail for another call", func() {
		m := mustMacro("errors_of", `{app="x"}`)
		_, err := m.Stringify(call(`other()`))
		Expect(srvErrors.IsMacroResolutionError(err)).To(BeTrue())
	})

	It("should reject invalid definitions", func() {
		_, err := macros.NewTemplateMacro("rate", `{a="b"}`)
		Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())

		_, err = macros.NewTemplateMacro("bad-name", `{a="b"}`)
		Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())

		_, err = macros.NewTemplateMacro("broken", `{{ .Args`)
		Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())
	})

	It("should reject names of grammar rules", func() {
		for _, name := range []string{logql.RuleMacroArg, logql.RuleLabel, logql.RuleUserMacro, logql.RuleQuotedStr} {
			_, err := macros.NewTemplateMacro(name, `{a="b"}`)
			Expect(err).To(HaveOccurred(), name)
			Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue(), name)
			Expect(err.Error()).To(ContainSubstring("grammar rule"))
		}
	})
})

var _ = Describe("Registry", func() {
	It("should find the macro matching the call", func() {
		r, err := macros.NewRegistry(
			mustMacro("first", `{a="1"}`),
			mustMacro("second", `{a="2"}`),
		)
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Names()).To(Equal([]string{"first", "second"}))

		m, ok := r.Find(call(`second()`))
		Expect(ok).To(BeTrue())
		Expect(m.RuleName()).To(Equal("second"))

		_, ok = r.Find(call(`third()`))
		Expect(ok).To(BeFalse())
	})

	It("should reject duplicate names", func() {
		r, err := macros.NewRegistry(mustMacro("first", `{a="1"}`))
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Register(mustMacro("first", `{a="2"}`))).To(MatchError(ContainSubstring("already registered")))
	})

	It("should find nothing in a nil registry", func() {
		var r *macros.Registry
		_, ok := r.Find(call(`first()`))
		Expect(ok).To(BeFalse())
	})
})

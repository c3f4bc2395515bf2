package transpiler_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

var _ = Describe("Time helpers", func() {
	Context("ParseTimeOrDefault", func() {
		def := time.UnixMilli(42)

		type testCase struct {
			input  string
			output time.Time
		}

		tests := []testCase{
			{input: "", output: def},
			{input: "2023-11-14T22:13:20Z", output: time.UnixMilli(1700000000000)},
			{input: "2023-11-14T22:13:20.5Z", output: time.UnixMilli(1700000000500)},
			{input: "1700000000000000000", output: time.UnixMilli(1700000000000)},
			{input: "1700000000.25", output: time.UnixMilli(1700000000250)},
		}

		for _, test := range tests {
			test := test
			It("should parse: "+test.input, func() {
				t, err := transpiler.ParseTimeOrDefault(test.input, def)
				Expect(err).ToNot(HaveOccurred())
				Expect(t.Equal(test.output)).To(BeTrue(), t.String())
			})
		}

		It("should reject other values", func() {
			_, err := transpiler.ParseTimeOrDefault("yesterday", def)
			Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())
		})
	})

	Context("ParseDuration", func() {
		It("should parse LogQL durations", func() {
			d, err := transpiler.ParseDuration("1h30m")
			Expect(err).ToNot(HaveOccurred())
			Expect(d).To(Equal(90 * time.Minute))
		})

		It("should reject invalid durations", func() {
			_, err := transpiler.ParseDuration("5 minutes")
			Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())
		})
	})

	Context("ParseStep", func() {
		type testCase struct {
			input  string
			output time.Duration
		}

		tests := []testCase{
			{input: "", output: 0},
			{input: "15", output: 15 * time.Second},
			{input: "0.5", output: 500 * time.Millisecond},
			{input: "2m", output: 2 * time.Minute},
		}

		for _, test := range tests {
			test := test
			It("should parse: "+test.input, func() {
				d, err := transpiler.ParseStep(test.input)
				Expect(err).ToNot(HaveOccurred())
				Expect(d).To(Equal(test.output))
			})
		}

		It("should reject non positive steps", func() {
			_, err := transpiler.ParseStep("0")
			Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())
			_, err = transpiler.ParseStep("-5")
			Expect(srvErrors.IsInvalidExpressionError(err)).To(BeTrue())
		})
	})

	Context("Align", func() {
		type testCase struct {
			start, end, d int64
			alignedStart  int64
			alignedEnd    int64
		}

		tests := []testCase{
			{start: 1000, end: 2000, d: 300000, alignedStart: 0, alignedEnd: 300000},
			{start: 300000, end: 600000, d: 300000, alignedStart: 300000, alignedEnd: 600000},
			{start: 1700000000500, end: 1700000001500, d: 300000, alignedStart: 1699999800000, alignedEnd: 1700000100000},
			{start: 5, end: 5, d: 10, alignedStart: 0, alignedEnd: 10},
			{start: -15, end: -5, d: 10, alignedStart: -20, alignedEnd: 0},
			{start: 7, end: 9, d: 0, alignedStart: 7, alignedEnd: 9},
		}

		for _, test := range tests {
			test := test
			It("should keep start before end on bucket boundaries", func() {
				start, end := transpiler.Align(test.start, test.end, test.d)
				Expect(start).To(Equal(test.alignedStart))
				Expect(end).To(Equal(test.alignedEnd))
				Expect(start).To(BeNumerically("<=", end))
				Expect(start).To(BeNumerically("<=", test.start))
				Expect(end).To(BeNumerically(">=", test.end))
				if test.d > 0 {
					Expect(start % test.d).To(BeZero())
					Expect(end % test.d).To(BeZero())
				}
			})
		}
	})
})

package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/attribench/attribench/internal/models"
)

// JUnit XML schema types. Each (model, task) pair becomes a testsuite
// and each metric a testcase, so CI dashboards show per-metric failures.

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one (model, task) report.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one metric.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure represents a metric below its gate floor.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a suite report to JUnit XML format. A metric
// is marked failed when its report failed the gate and the metric
// scored below its scale maximum: individual gate floors are not
// recorded in the report, so the conservative reading flags every
// non-perfect metric of a failing pair.
func ConvertToJUnit(suite *models.SuiteReport) *JUnitTestSuites {
	out := &JUnitTestSuites{}

	for i := range suite.Reports {
		r := &suite.Reports[i]

		ts := JUnitTestSuite{
			Name:      fmt.Sprintf("%s/%s", r.Model, r.Task),
			Tests:     len(r.Metrics),
			Timestamp: r.Timestamp.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "model", Value: r.Model},
				{Name: "task", Value: string(r.Task)},
				{Name: "overall", Value: fmt.Sprintf("%.4f", r.Overall)},
				{Name: "pass", Value: fmt.Sprintf("%t", r.Pass)},
				{Name: "records", Value: fmt.Sprintf("%d", r.Records)},
			},
		}

		for _, m := range r.Metrics {
			tc := JUnitTestCase{
				Name:      m.Name,
				Classname: string(r.Task),
			}
			if !r.Pass && m.Score < m.ScaleMax {
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s: score=%d/%d ratio=%.3f", m.Name, m.Score, m.ScaleMax, m.Ratio),
					Type:    "MetricBelowGate",
				}
				ts.Failures++
			}
			ts.TestCases = append(ts.TestCases, tc)
		}

		out.Tests += ts.Tests
		out.Failures += ts.Failures
		out.TestSuites = append(out.TestSuites, ts)
	}

	return out
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suite *models.SuiteReport, path string) error {
	suites := ConvertToJUnit(suite)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}

package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/restylelab/stylebench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one benchmark run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one evaluated pair, or one delta when a baseline
// comparison is present.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a regression or a failing grade.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a judge failure for a pair.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a run record to JUnit XML. Each evaluated pair
// becomes a testcase classed by style; an F grade is a failure, a judge
// failure is an error, and a baseline regression adds a failing testcase
// per regressed style. CI systems surface these without knowing anything
// about the pipeline.
func ConvertToJUnit(run *models.RunRecord) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      "stylebench",
		Timestamp: run.StartedAt.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "run_id", Value: run.RunID},
		},
	}
	if run.Winner != "" {
		suite.Properties = append(suite.Properties, JUnitProperty{Name: "winner", Value: run.Winner})
	}

	for _, e := range run.Evaluations {
		tc := JUnitTestCase{
			Name:      e.StyledImage,
			Classname: e.Style,
		}
		if e.Grade == models.GradeF {
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("scored %.2f%% (grade %s)", e.Percentage, e.Grade),
				Type:    "FailingGrade",
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
	}

	for _, f := range run.Failures {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      f.StyledImage,
			Classname: f.Style,
			Error: &JUnitError{
				Message: f.Err,
				Type:    "JudgeFailure",
			},
		})
		suite.Tests++
		suite.Errors++
	}

	if run.Comparison != nil {
		for _, d := range run.Comparison.Regressions() {
			suite.TestCases = append(suite.TestCases, JUnitTestCase{
				Name:      "regression/" + d.Style,
				Classname: d.Style,
				Failure: &JUnitFailure{
					Message: fmt.Sprintf("%.2f%% -> %.2f%% (%+.2fpp vs baseline %s)",
						d.BaselineScore, d.CandidateScore, d.Delta, run.Comparison.BaselineRunID),
					Type: "Regression",
				},
			})
			suite.Tests++
			suite.Failures++
		}
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(run *models.RunRecord, path string) error {
	suites := ConvertToJUnit(run)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}

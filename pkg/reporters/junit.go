package reporters

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/probehq/apiprobe/internal/suite"
)

// JUnit XML schema structs - see https://github.com/jstemmer/go-junit-report

type junitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []junitXMLTestSuite `xml:"testsuite"`
}

type junitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Name       string             `xml:"name,attr"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Time       string             `xml:"time,attr"`
	Properties []junitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []junitXMLTestCase `xml:"testcase"`
}

type junitXMLTestCase struct {
	XMLName   xml.Name         `xml:"testcase"`
	Classname string           `xml:"classname,attr"`
	Name      string           `xml:"name,attr"`
	Time      string           `xml:"time,attr"`
	Failure   *junitXMLFailure `xml:"failure,omitempty"`
}

type junitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitXMLFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// junitDocument renders a run report as a single JUnit test suite.
func junitDocument(report suite.RunReport) junitXMLDocument {
	ts := junitXMLTestSuite{
		Name:     report.Suite,
		Tests:    report.Total,
		Failures: report.Failed,
		Time:     junitDurationString(report.Elapsed),
		Properties: []junitXMLProperty{
			{Name: "target", Value: report.Target},
			{Name: "started_at", Value: report.StartedAt.Format(time.RFC3339)},
		},
	}

	for _, res := range report.Results {
		tc := junitXMLTestCase{
			Classname: report.Suite,
			Name:      res.Name,
			Time:      junitDurationString(res.Elapsed),
		}
		if res.Status != suite.StatusPassed {
			tc.Failure = &junitXMLFailure{
				Message: res.Err,
				Type:    res.Kind,
			}
		}
		ts.TestCases = append(ts.TestCases, tc)
	}

	return junitXMLDocument{Suites: []junitXMLTestSuite{ts}}
}

func junitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

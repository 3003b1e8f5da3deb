package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/interoplab/conformd/types"
)

const (
	MetricsNamespace = "conformd"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "validations_total",
		Help:      "Count of executed test units",
	}, []string{
		"target",
		"run_id",
		"sequence",
		"test",
		"result",
	})

	conformanceResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "conformance_results",
		Help:      "Result of conformance runs",
	}, []string{
		"target",
		"run_id",
		"result",
	})

	conformanceTestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "conformance_test_total",
		Help:      "Total number of conformance tests",
	}, []string{
		"target",
		"run_id",
	})

	conformanceTestPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "conformance_test_passed",
		Help:      "Number of passed conformance tests",
	}, []string{
		"target",
		"run_id",
	})

	conformanceTestFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "conformance_test_failed",
		Help:      "Number of failed conformance tests",
	}, []string{
		"target",
		"run_id",
	})

	conformanceTestDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "conformance_test_duration",
		Help:      "Duration of conformance runs",
	}, []string{
		"target",
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordValidation records one executed test unit's result.
func RecordValidation(target string, runID string, sequenceID string, testID string, result types.TestStatus) {
	if !isValidResult(result) {
		log.Error("RecordValidation - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "validations_total",
			"target", target,
			"run_id", runID,
			"sequence", sequenceID,
			"test", testID,
			"result", result)
	}
	validationsTotal.WithLabelValues(target, runID, sequenceID, testID, string(result)).Inc()
}

// RecordConformance records the aggregate outcome of one run.
func RecordConformance(
	target string,
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	duration time.Duration,
) {
	conformanceResults.WithLabelValues(target, runID, result).Set(1)
	conformanceTestTotal.WithLabelValues(target, runID).Add(float64(total))
	conformanceTestPassed.WithLabelValues(target, runID).Add(float64(passed))
	conformanceTestFailed.WithLabelValues(target, runID).Add(float64(failed))
	conformanceTestDuration.WithLabelValues(target, runID).Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(types.AllStatuses(), result)
}

package scenario

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination "mock_trace_test.go" -package $GOPACKAGE -write_package_comment=false github.com/inference-sim/queueing-sim/sim/trace Sink

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	} else {
		logrus.SetLevel(logrus.TraceLevel)
	}
	os.Exit(m.Run())
}

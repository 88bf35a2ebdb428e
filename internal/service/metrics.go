package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

// Operation label values.
const (
	opSignup       = "signup"
	opLogin        = "login"
	opLogout       = "logout"
	opRefresh      = "refresh_token"
	opCreateIntern = "create_intern"
)

const outcomeSuccess = "success"

var authOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_operations_total",
		Help: "Authentication and provisioning operations by outcome.",
	},
	[]string{"operation", "outcome"},
)

// recordOutcome counts one finished operation. Failures are labeled with
// the envelope error type, e.g. "ConflictError".
func recordOutcome(operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = apperrors.TypeOf(err)
	}
	authOperations.WithLabelValues(operation, outcome).Inc()
}

package services

import (
	"errors"
	"internhub/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_operations_total",
		Help: "Internship operations by name and outcome.",
	}, []string{"operation", "outcome"})

	bulkItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "internhub_bulk_items_total",
		Help: "Bulk operation items by operation type and outcome.",
	}, []string{"operation", "outcome"})

	bulkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "internhub_bulk_duration_seconds",
		Help:    "Wall time of bulk operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, models.ErrNotModifiable):
		return "not_modifiable"
	case errors.Is(err, models.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, models.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	}
	return "error"
}

func observe(operation string, err error) {
	operationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

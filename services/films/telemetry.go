package films

import (
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("animfilms.services.films")
var meter = otel.Meter("animfilms.services.films")

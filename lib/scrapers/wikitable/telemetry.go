package wikitable

import (
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("animfilms.lib.scrapers.wikitable")

// Package export publishes finished analysis runs to external sinks.
//
// A Publisher fans a run out to MQTT and to any number of time-series
// writers (InfluxDB, VictoriaMetrics). Every sink is optional; a Publisher
// with none is a valid no-op. Sinks are addressed through small interfaces
// so the analysis pipeline can be tested without a broker or database.
//
// The time-series schema lives here rather than in the clients, so both
// databases receive identical points.
package export

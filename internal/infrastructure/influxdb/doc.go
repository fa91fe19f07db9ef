// Package influxdb provides optional time-series storage for sensor
// telemetry.
//
// Every accepted sensor reading is mirrored to InfluxDB alongside the
// in-memory snapshot, giving dashboards full history where the snapshot
// only keeps the latest sample. Actuator transitions are recorded too so
// duty cycles can be charted.
//
// Writes are non-blocking: points are batched by the client library and
// flushed on an interval, so a slow or absent InfluxDB never delays
// request handling. Write failures surface through the SetOnError
// callback rather than the write call.
//
// The integration is optional. When influxdb.enabled is false in config
// the hub skips this package entirely and telemetry lives only in the
// snapshot.
package influxdb

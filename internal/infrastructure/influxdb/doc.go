// Package influxdb records machine telemetry in InfluxDB v2.
//
// Two measurements are written, both tagged with the site id:
//
//	handshake_line   tags: line, phase          fields: asserted, duty
//	machine_event    tags: event, phase         fields: from, to, ready
//
// Writes go through the library's non-blocking batched write API, so they
// never stall the controller. Async write errors are delivered to the
// callback set with SetOnError.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteLineLevel("tending-running", "tending", true, 0, time.Now())
package influxdb

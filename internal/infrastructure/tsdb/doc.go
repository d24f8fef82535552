// Package tsdb writes evaluation points to VictoriaMetrics.
//
// Points are rendered as InfluxDB line protocol and POSTed to the /write
// endpoint in batches. Only net/http is used, so the package carries no
// client library of its own.
//
// # Usage
//
//	client, err := tsdb.Connect(ctx, cfg.TSDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePointWithTime("energy_evaluation",
//	    map[string]string{"run_id": id, "location": "RwnD0"},
//	    map[string]interface{}{"wh": 0.044},
//	    spanEnd)
//	client.Flush()
//
// A batch is sent when it reaches batch_size points, when the flush
// interval elapses, on Flush and on Close. Write failures are delivered to
// the SetOnError callback; nothing is retried.
package tsdb

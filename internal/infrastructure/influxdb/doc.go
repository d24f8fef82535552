// Package influxdb writes evaluation points to InfluxDB 2.x.
//
// It wraps influxdb-client-go v2 with connection management and a
// non-blocking batched write API. The point schema is owned by the caller;
// this package only moves points.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePointWithTime("energy_evaluation",
//	    map[string]string{"run_id": runID, "location": "RwnD0"},
//	    map[string]interface{}{"wh": 0.0444},
//	    spanEnd)
//
// Write errors are asynchronous and reported through SetOnError.
package influxdb

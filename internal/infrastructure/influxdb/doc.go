// Package influxdb records on/off state changes as time series.
//
// Every unit state change becomes an onoff_state point tagged with the
// instance, class, port and command source, so relay duty cycles and
// switching frequency can be charted per device. Build attempts are
// recorded as unit_build points.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without time-series storage
//	}
//	defer client.Close()
//
//	bus.Subscribe("influxdb", client.Handle)
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched according to batch_size and flush_interval; failures are
// reported through SetOnError.
package influxdb

// Package influxdb records catalog query metrics in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. The Client implements
// catalog.QueryRecorder; wrap the store's querier with catalog.Instrument to
// get one catalog_queries point per database round trip.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := catalog.NewStore(catalog.Instrument(db, client), db.Dialect())
//
// # Error Handling
//
// Writes are non-blocking and batched (batch_size, flush_interval); failures
// are delivered to the SetOnError callback. Connection and health check
// errors are returned directly.
package influxdb

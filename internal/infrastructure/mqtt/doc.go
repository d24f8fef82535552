// Package mqtt provides the MQTT client used to publish evaluation results.
//
// The client wraps paho.mqtt.golang with:
//   - auto-reconnect
//   - QoS and payload-size validation on publish
//   - a retained online/offline status on simeval/system/status, with a Last
//     Will so a crash is visible to subscribers
//
// Topic names are built with Topics{} so the export package and any
// dashboard subscribers agree on the tree:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.EvaluationLatest(), summary, true)
package mqtt

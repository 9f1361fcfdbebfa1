// Package mqtt connects tendbot to an MQTT broker.
//
// The broker carries the machine's status feed outward (retained machine
// snapshot, handshake line levels, online/offline status) and operator
// commands inward. It is optional: the controller runs without it.
//
// # Topics
//
// Every topic lives under tendbot/{site}:
//
//	tendbot/{site}/system/status        online/offline, retained, LWT
//	tendbot/{site}/machine/state        controller snapshot, retained
//	tendbot/{site}/machine/transition   one message per accepted event
//	tendbot/{site}/line/{id}            handshake line level, retained
//	tendbot/{site}/command              operator commands (inbound)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Site.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().Command(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt

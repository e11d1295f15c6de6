package hci

import "github.com/kestrelbt/ble"

var logger = ble.GetLogger().ChildLogger(map[string]interface{}{"pkg": "hci"})

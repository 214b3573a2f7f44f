package backend

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// RealtimeClient subscribe row-level change feed ของ backend ผ่าน websocket
// โปรโตคอลเป็น frame {topic, event, payload, ref} สไตล์ phoenix channel
type RealtimeClient struct {
	c *Client
}

type frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

type updatePayload struct {
	Record json.RawMessage `json:"record"`
}

const heartbeatInterval = 25 * time.Second

// Channel คือ subscription ที่ถืออยู่ - ต้อง Close ทุก exit path ไม่งั้น listener รั่ว
type Channel struct {
	conn    *websocket.Conn
	topic   string
	done    chan struct{}
	once    sync.Once
	writeMu sync.Mutex
}

func rowTopic(table, rowID string) string {
	return "realtime:public:" + table + ":id=eq." + rowID
}

// SubscribeRowUpdates ฟัง UPDATE ของแถวเดียวในตารางเดียว
// ทุก update ส่งแถวใหม่ทั้งแถวเข้า onUpdate (เรียกจาก goroutine ของ channel)
func (r *RealtimeClient) SubscribeRowUpdates(ctx context.Context, table, rowID string, onUpdate func(json.RawMessage)) (*Channel, error) {
	wsURL := strings.Replace(r.c.baseURL, "http", "ws", 1) + "/realtime/v1/websocket?apikey=" + r.c.anonKey + "&vsn=1.0.0"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	ch := &Channel{conn: conn, topic: rowTopic(table, rowID), done: make(chan struct{})}
	if err := ch.send("phx_join", json.RawMessage(`{}`)); err != nil {
		conn.Close()
		return nil, err
	}

	go ch.readLoop(onUpdate)
	go ch.heartbeat()
	return ch, nil
}

func (ch *Channel) send(event string, payload json.RawMessage) error {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	return ch.conn.WriteJSON(frame{
		Topic:   ch.topic,
		Event:   event,
		Payload: payload,
		Ref:     uuid.NewString(),
	})
}

func (ch *Channel) readLoop(onUpdate func(json.RawMessage)) {
	for {
		var f frame
		if err := ch.conn.ReadJSON(&f); err != nil {
			select {
			case <-ch.done: // ปิดเอง ไม่ใช่ error
			default:
				log.Printf("realtime: read error: %v", err)
			}
			return
		}
		if f.Topic != ch.topic || f.Event != "UPDATE" {
			continue
		}
		var p updatePayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			log.Printf("realtime: bad update payload: %v", err)
			continue
		}
		onUpdate(p.Record)
	}
}

func (ch *Channel) heartbeat() {
	t := time.NewTicker(heartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-ch.done:
			return
		case <-t.C:
			ch.writeMu.Lock()
			err := ch.conn.WriteJSON(frame{Topic: "phoenix", Event: "heartbeat", Payload: json.RawMessage(`{}`), Ref: uuid.NewString()})
			ch.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Close ออกจาก channel และตัด websocket (เรียกซ้ำได้)
func (ch *Channel) Close() {
	ch.once.Do(func() {
		close(ch.done)
		ch.send("phx_leave", json.RawMessage(`{}`))
		ch.conn.Close()
	})
}

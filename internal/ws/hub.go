package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"shanyrak/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Hub 管理公告级别的评论流，实现延迟创建与并发安全。
type Hub struct {
	mu    sync.RWMutex
	feeds map[uint]*Feed
}

func NewHub() *Hub { return &Hub{feeds: make(map[uint]*Feed)} }

// GetFeed 若公告的评论流未初始化则懒加载一个 Feed。
func (h *Hub) GetFeed(announcementID uint) *Feed {
	h.mu.RLock()
	feed := h.feeds[announcementID]
	h.mu.RUnlock()
	if feed != nil {
		return feed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	feed = h.feeds[announcementID]
	if feed != nil {
		return feed
	}
	feed = NewFeed(announcementID)
	h.feeds[announcementID] = feed
	go feed.run()
	return feed
}

// CloseFeed 移除公告的评论流并断开全部订阅者，公告删除后调用。
func (h *Hub) CloseFeed(announcementID uint) {
	h.mu.Lock()
	feed := h.feeds[announcementID]
	delete(h.feeds, announcementID)
	h.mu.Unlock()
	if feed != nil {
		close(feed.done)
	}
}

func (h *Hub) Subscribers(announcementID uint) int {
	h.mu.RLock()
	feed := h.feeds[announcementID]
	h.mu.RUnlock()
	if feed == nil {
		return 0
	}
	return feed.Subscribers()
}

// Event 是推送给订阅者的评论事件。
type Event struct {
	Type           string      `json:"type"`
	AnnouncementID uint        `json:"announcement_id"`
	Comment        interface{} `json:"comment"`
}

// Publish 只投递给已有订阅者的评论流，没有订阅者时直接丢弃。
func (h *Hub) Publish(announcementID uint, eventType string, payload interface{}) {
	h.mu.RLock()
	feed := h.feeds[announcementID]
	h.mu.RUnlock()
	if feed == nil || feed.Subscribers() == 0 {
		return
	}
	b, err := json.Marshal(Event{Type: eventType, AnnouncementID: announcementID, Comment: payload})
	if err != nil {
		log.Error().Err(err).Uint("announcement_id", announcementID).Msg("marshal feed event")
		return
	}
	select {
	case feed.broadcast <- b:
		metrics.FeedEventsTotal.Inc()
	default:
		log.Warn().Uint("announcement_id", announcementID).Msg("feed broadcast buffer full")
	}
}

type Feed struct {
	announcementID uint
	clients        map[*Client]bool
	register       chan *Client
	unregister     chan *Client
	broadcast      chan []byte
	done           chan struct{}
	subscribers    int32
}

func NewFeed(announcementID uint) *Feed {
	return &Feed{
		announcementID: announcementID,
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan []byte, 256),
		done:           make(chan struct{}),
	}
}

func (f *Feed) drop(c *Client) {
	close(c.send)
	delete(f.clients, c)
	atomic.StoreInt32(&f.subscribers, int32(len(f.clients)))
	metrics.FeedSubscribers.Dec()
}

func (f *Feed) run() {
	for {
		select {
		case c := <-f.register:
			f.clients[c] = true
			atomic.StoreInt32(&f.subscribers, int32(len(f.clients)))
			metrics.FeedSubscribers.Inc()
		case c := <-f.unregister:
			if _, ok := f.clients[c]; ok {
				f.drop(c)
			}
		case <-f.done:
			for c := range f.clients {
				f.drop(c)
			}
			return
		case msg := <-f.broadcast:
			for c := range f.clients {
				select {
				case c.send <- msg:
				default:
					// 慢客户端直接断开
					f.drop(c)
				}
			}
		}
	}
}

// Subscribers 返回当前订阅该评论流的连接数。
func (f *Feed) Subscribers() int { return int(atomic.LoadInt32(&f.subscribers)) }

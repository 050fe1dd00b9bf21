package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
	"github.com/Helper-Yoon/sns-help-counter/internal/queue"
	"github.com/Helper-Yoon/sns-help-counter/internal/storage"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Channel Talk deliveries. It acknowledges fast and
// defers persistence to the queue; a storage hiccup must never look like a
// failed delivery upstream, or the sender starts a retry storm.
type WebhookHandler struct {
	queue   *queue.RedisQueue
	logRepo *storage.WebhookLogRepo
	secret  string
}

func NewWebhookHandler(q *queue.RedisQueue, logRepo *storage.WebhookLogRepo, secret string) *WebhookHandler {
	return &WebhookHandler{queue: q, logRepo: logRepo, secret: secret}
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": "unreadable body"})
		return
	}

	if h.secret != "" {
		signature := c.GetHeader("x-signature")
		if !verifySignature(body, signature, h.secret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	ev, err := domain.ParseWebhookEnvelope(body)
	if err != nil {
		h.audit("unknown", body, false, err.Error())
		c.JSON(http.StatusOK, gin.H{"success": false, "ignored": true, "reason": "malformed payload"})
		return
	}

	eventType := ev.Event
	if eventType == "" {
		eventType = ev.Type
	}

	if !ev.IsMessageEvent() {
		c.JSON(http.StatusOK, gin.H{"success": true, "ignored": true, "reason": "not a message event"})
		return
	}
	if !ev.Message.IsManager() {
		c.JSON(http.StatusOK, gin.H{"success": true, "ignored": true, "reason": "not a manager message"})
		return
	}

	publishCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.queue.Publish(publishCtx, ev); err != nil {
		log.Printf("webhook enqueue failed: %v", err)
		h.audit(eventType, body, false, err.Error())
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": "enqueue failed"})
		return
	}

	h.audit(eventType, body, true, "")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// audit writes the raw delivery to the log table without holding up the
// response.
func (h *WebhookHandler) audit(eventType string, body []byte, processed bool, errMsg string) {
	if h.logRepo == nil {
		return
	}
	payload := append(json.RawMessage(nil), body...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.logRepo.Insert(ctx, eventType, payload, processed, errMsg); err != nil {
			log.Printf("webhook audit insert failed: %v", err)
		}
	}()
}

func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

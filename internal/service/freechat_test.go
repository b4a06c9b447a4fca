package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ivanoskov/villa_bot/internal/logger"
)

func TestFreeChatAnswer(t *testing.T) {
	llm := &fakeCompleter{reply: "На Самуи круглый год тепло."}
	chat := NewFreeChat(llm, logger.Discard())

	reply := chat.Answer(context.Background(), 1, "какая погода?")
	assert.Equal(t, "На Самуи круглый год тепло.", reply)
	assert.Equal(t, ChatPersona, llm.system)
}

func TestFreeChatAppendsCallToAction(t *testing.T) {
	llm := &fakeCompleter{reply: "Есть варианты."}
	chat := NewFreeChat(llm, logger.Discard())

	reply := chat.Answer(context.Background(), 1, "Хочу СНЯТЬ виллу")
	assert.Equal(t, "Есть варианты.\n\n"+RentCallToAction, reply)

	llm.reply = "Напишите /rent"
	reply = chat.Answer(context.Background(), 1, "аренда")
	assert.Equal(t, "Напишите /rent", reply)
}

func TestFreeChatCannedReply(t *testing.T) {
	assert.Equal(t, CannedChatReply, NewFreeChat(nil, logger.Discard()).Answer(context.Background(), 1, "привет"))

	failing := NewFreeChat(&fakeCompleter{err: errBoom}, logger.Discard())
	assert.Equal(t, CannedChatReply, failing.Answer(context.Background(), 1, "привет"))

	empty := NewFreeChat(&fakeCompleter{reply: "  "}, logger.Discard())
	assert.Equal(t, CannedChatReply, empty.Answer(context.Background(), 1, "привет"))
}

func TestFreeChatRateLimit(t *testing.T) {
	llm := &fakeCompleter{reply: "ok"}
	chat := NewFreeChat(llm, logger.Discard(), WithChatRate(time.Hour, 2))

	assert.Equal(t, "ok", chat.Answer(context.Background(), 1, "a"))
	assert.Equal(t, "ok", chat.Answer(context.Background(), 1, "b"))
	assert.Equal(t, CannedChatReply, chat.Answer(context.Background(), 1, "c"))
	assert.Equal(t, 2, llm.calls)

	assert.Equal(t, "ok", chat.Answer(context.Background(), 2, "other user"))
}

func TestIsTrigger(t *testing.T) {
	assert.True(t, IsTrigger("rent"))
	assert.True(t, IsTrigger(" Rent "))
	assert.False(t, IsTrigger("rental"))
	assert.False(t, IsTrigger("/rent"))
}

package http

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func actorFrom(c *fiber.Ctx) (conversation.Actor, bool) {
	id, role, ok := middleware.ActorFromContext(c)
	if !ok {
		return conversation.Actor{}, false
	}
	return conversation.Actor{ID: id, Role: role}, true
}

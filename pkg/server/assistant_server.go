package server

import (
	"fmt"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/config"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	AssistantServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	AssistantServer struct {
		*BaseServer
	}
)

func NewAssistantServer(di AssistantServerDI) *AssistantServer {
	s := &AssistantServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.WithRouters(di.Routers...)
	return s
}

func (s *AssistantServer) Run() error {
	s.setupMetricsEndpoint()
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting assistant server")
	return s.Router.Listen(addr)
}

func (s *AssistantServer) Shutdown() error {
	return s.shutdown()
}

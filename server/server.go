package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lab-server/handlers"
	httpHandler "lab-server/handlers/http"
	"lab-server/logger"
	"lab-server/usecases"
	"lab-server/ws"
)

// Deps is everything the HTTP surface needs; main wires it.
type Deps struct {
	Commands        *usecases.CommandsUseCase
	Directory       *usecases.DirectoryUseCase
	BlockedWebsites *usecases.BlockedWebsitesUseCase
	InstallableApps *usecases.InstallableAppsUseCase
	Dashboard       *usecases.DashboardUseCase
	Incidents       *usecases.IncidentsUseCase
	ExamControl     *usecases.ExamControlUseCase
	Hub             *ws.Hub
	Screens         *ws.Hub
}

type Server struct {
	app  *gin.Engine
	addr string
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{app: gin.New(), addr: addr}
	s.app.Use(gin.Logger(), gin.Recovery())
	s.routes(deps)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

func (s *Server) routes(deps Deps) {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Email"}
	s.app.Use(cors.New(config))

	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	s.app.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cmdHandler := httpHandler.NewCommandHandler(deps.Commands)
	roomHandler := httpHandler.NewRoomHandler(deps.Directory, deps.InstallableApps)
	siteHandler := httpHandler.NewBlockedWebsiteHandler(deps.BlockedWebsites)
	appHandler := httpHandler.NewInstallableAppHandler(deps.InstallableApps)
	dashHandler := httpHandler.NewDashboardHandler(deps.Dashboard)
	incidentHandler := httpHandler.NewIncidentHandler(deps.Incidents)
	controlHandler := httpHandler.NewControlHandler(deps.ExamControl)
	wsHandler := handlers.NewStatusWSHandler(deps.Hub, deps.Dashboard)
	screensHandler := handlers.NewScreensWSHandler(deps.Screens)

	api := s.app.Group("/api/v1", httpHandler.Issuer())
	{
		commands := api.Group("/commands")
		{
			commands.POST("", cmdHandler.Create)
			commands.GET("", cmdHandler.List)
			commands.GET("/:id", cmdHandler.Get)
			commands.PUT("/:id/status", cmdHandler.UpdateStatus) // agent HTTP fallback
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)
			rooms.GET("/:room/pcs", roomHandler.ListPcs)
			rooms.POST("/:room/pcs/:pcId/install", roomHandler.InstallApp)
		}

		sites := api.Group("/blocked-websites")
		{
			sites.GET("", siteHandler.List)
			sites.GET("/count", siteHandler.Count)
			sites.POST("", siteHandler.Add)
			sites.DELETE("/:id", siteHandler.Delete)
		}

		apps := api.Group("/installable-apps")
		{
			apps.GET("", appHandler.List)
			apps.POST("", appHandler.Add)
			apps.DELETE("/:id", appHandler.Delete)
		}

		incidents := api.Group("/incidents")
		{
			incidents.POST("", incidentHandler.Report)
			incidents.GET("", incidentHandler.List)
			incidents.PATCH("/:id/complete", incidentHandler.Complete)
		}

		api.POST("/control/:action", controlHandler.Send)
		api.GET("/directory/cache", roomHandler.CacheStats)
		api.GET("/computers/status", dashHandler.ComputerStatuses)
		api.GET("/computers/status/:ip", dashHandler.ComputerStatus)
		api.GET("/dashboard/stats", dashHandler.Stats)
	}

	s.app.GET("/ws/status", wsHandler.HandleStatusWS)
	s.app.GET("/ws/screens", screensHandler.HandleScreensWS)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.app, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

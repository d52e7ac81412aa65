package server

// Server joins the HTTP handlers of every resource. Only the series artifact
// is served for now.
type Server struct {
	SeriesServer
}

func NewServer(
	seriesServer SeriesServer,
) Server {
	return Server{
		SeriesServer: seriesServer,
	}
}

package backend

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/nexo/core"
)

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Articles int    `json:"articles"`
	Uptime   int64  `json:"uptime_seconds"`
}

func health(db *core.CoreDB) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var status = healthStatus{
			Status:   "ok",
			Database: "ok",
			Uptime:   int64(time.Since(db.Started).Seconds()),
		}

		var code = http.StatusOK

		if db.SqlDB != nil {
			if err := db.SqlDB.PingContext(req.Context()); err != nil {
				status.Status = "unavailable"
				status.Database = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		if code == http.StatusOK {
			var err error
			if status.Articles, err = db.CountArticles(); err != nil {
				status.Status = "unavailable"
				status.Database = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/prezi_grab/internal/runner"
)

type runIDInput struct {
	RunID string `path:"run_id"`
}

func registerRunHandlers(api huma.API, svc Service) {
	type startRunInput struct {
		Body struct {
			URL string `json:"url" doc:"Public Prezi presentation URL (https://prezi.com/p/...)"`
		}
	}
	type runOutput struct {
		Body runner.RunInfo
	}
	huma.Register(api, huma.Operation{OperationID: "start-run", Method: http.MethodPost, Path: "/api/v1/runs", Summary: "Start a grab run", Tags: []string{"Runs"}},
		func(ctx context.Context, input *startRunInput) (*runOutput, error) {
			info, err := svc.StartRun(ctx, input.Body.URL)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &runOutput{}
			out.Body = info
			return out, nil
		})

	type listRunsOutput struct {
		Body struct {
			Runs []runner.RunInfo `json:"runs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-runs", Method: http.MethodGet, Path: "/api/v1/runs", Summary: "List runs, newest first", Tags: []string{"Runs"}},
		func(ctx context.Context, input *struct{}) (*listRunsOutput, error) {
			out := &listRunsOutput{}
			out.Body.Runs = svc.ListRuns()
			if out.Body.Runs == nil {
				out.Body.Runs = []runner.RunInfo{}
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-run", Method: http.MethodGet, Path: "/api/v1/runs/{run_id}", Summary: "Get run status and result", Tags: []string{"Runs"}},
		func(ctx context.Context, input *runIDInput) (*runOutput, error) {
			info, err := svc.GetRun(input.RunID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &runOutput{}
			out.Body = info
			return out, nil
		})

	type cancelRunOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "cancel-run", Method: http.MethodDelete, Path: "/api/v1/runs/{run_id}", Summary: "Cancel an in-flight run", Tags: []string{"Runs"}},
		func(ctx context.Context, input *runIDInput) (*cancelRunOutput, error) {
			if err := svc.CancelRun(input.RunID); err != nil {
				return nil, mapErr(err)
			}
			out := &cancelRunOutput{}
			out.Body.Status = "cancelled"
			return out, nil
		})
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/prezi_grab/internal/store"
)

func registerArtifactHandlers(api huma.API, svc Service) {
	type listLinksOutput struct {
		Body struct {
			Links []store.LinkRecord `json:"links"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-links", Method: http.MethodGet, Path: "/api/v1/runs/{run_id}/links", Summary: "List YouTube links found by a run", Tags: []string{"Artifacts"}},
		func(ctx context.Context, input *runIDInput) (*listLinksOutput, error) {
			links, err := svc.ListLinks(input.RunID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listLinksOutput{}
			out.Body.Links = links
			if out.Body.Links == nil {
				out.Body.Links = []store.LinkRecord{}
			}
			return out, nil
		})

	type listScreenshotsOutput struct {
		Body struct {
			Screenshots []store.ScreenshotMeta `json:"screenshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-screenshots", Method: http.MethodGet, Path: "/api/v1/runs/{run_id}/screenshots", Summary: "List slide screenshots captured by a run", Tags: []string{"Artifacts"}},
		func(ctx context.Context, input *runIDInput) (*listScreenshotsOutput, error) {
			metas, err := svc.ListScreenshots(input.RunID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listScreenshotsOutput{}
			out.Body.Screenshots = metas
			if out.Body.Screenshots == nil {
				out.Body.Screenshots = []store.ScreenshotMeta{}
			}
			return out, nil
		})

	type screenshotInput struct {
		RunID string `path:"run_id"`
		Name  string `path:"name"`
	}
	type screenshotImageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-screenshot-image",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs/{run_id}/screenshots/{name}",
		Summary:     "Get one slide screenshot",
		Tags:        []string{"Artifacts"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Slide screenshot",
				Content: map[string]*huma.MediaType{
					"image/png": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *screenshotInput) (*screenshotImageOutput, error) {
		data, err := svc.ReadScreenshot(input.RunID, input.Name)
		if err != nil {
			return nil, mapErr(err)
		}
		return &screenshotImageOutput{ContentType: "image/png", Body: data}, nil
	})
}

package openshiftai

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkbenchCounts breaks down the workbenches of a project by status.
type WorkbenchCounts struct {
	Total    int `json:"total"`
	Running  int `json:"running"`
	Stopped  int `json:"stopped"`
	Starting int `json:"starting"`
}

// ReadyCounts counts resources reporting a Ready condition.
type ReadyCounts struct {
	Total int `json:"total"`
	Ready int `json:"ready"`
}

// ProjectSummary is a compact overview of everything deployed in a project.
type ProjectSummary struct {
	Project           Project         `json:"project"`
	Workbenches       WorkbenchCounts `json:"workbenches"`
	TrainingJobs      map[string]int  `json:"training_jobs"`
	PipelineServers   ReadyCounts     `json:"pipeline_servers"`
	PipelineRuns      map[string]int  `json:"pipeline_runs"`
	Storage           int             `json:"storage"`
	Connections       int             `json:"connections"`
	InferenceServices ReadyCounts     `json:"inference_services"`
}

// GetProjectSummary fetches every resource kind of a project concurrently and counts them.
// Components that are not installed in the cluster count as empty.
func (c *Client) GetProjectSummary(ctx context.Context, namespace string) (*ProjectSummary, error) {
	project, err := c.GetProject(ctx, namespace)
	if err != nil {
		return nil, err
	}
	summary := &ProjectSummary{
		Project:      *project,
		TrainingJobs: map[string]int{},
		PipelineRuns: map[string]int{},
	}
	g, gctx := errgroup.WithContext(ctx)
	// Each goroutine writes to its own fields of summary
	g.Go(func() error {
		workbenches, err := ignoreNotInstalled(c.ListWorkbenches(gctx, namespace))
		for _, w := range workbenches {
			summary.Workbenches.Total++
			switch w.Status {
			case WorkbenchRunning:
				summary.Workbenches.Running++
			case WorkbenchStopped:
				summary.Workbenches.Stopped++
			case WorkbenchStarting:
				summary.Workbenches.Starting++
			}
		}
		return err
	})
	g.Go(func() error {
		jobs, err := ignoreNotInstalled(c.ListTrainingJobs(gctx, namespace))
		for _, j := range jobs {
			summary.TrainingJobs[string(j.Status)]++
		}
		return err
	})
	g.Go(func() error {
		servers, err := ignoreNotInstalled(c.ListPipelineServers(gctx, namespace))
		for _, s := range servers {
			summary.PipelineServers.Total++
			if s.Ready {
				summary.PipelineServers.Ready++
			}
		}
		return err
	})
	g.Go(func() error {
		runs, err := ignoreNotInstalled(c.ListPipelineRuns(gctx, namespace))
		for _, r := range runs {
			summary.PipelineRuns[r.Status]++
		}
		return err
	})
	g.Go(func() error {
		storage, err := c.ListStorage(gctx, namespace)
		summary.Storage = len(storage)
		return err
	})
	g.Go(func() error {
		connections, err := c.ListConnections(gctx, namespace)
		summary.Connections = len(connections)
		return err
	})
	g.Go(func() error {
		services, err := ignoreNotInstalled(c.ListInferenceServices(gctx, namespace))
		for _, s := range services {
			summary.InferenceServices.Total++
			if s.Ready {
				summary.InferenceServices.Ready++
			}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

package openshiftai

import "k8s.io/apimachinery/pkg/runtime/schema"

var (
	NotebookGVR = schema.GroupVersionResource{
		Group:    "kubeflow.org",
		Version:  "v1",
		Resource: "notebooks",
	}
	TrainJobGVR = schema.GroupVersionResource{
		Group:    "trainer.kubeflow.org",
		Version:  "v1alpha1",
		Resource: "trainjobs",
	}
	TrainingRuntimeGVR = schema.GroupVersionResource{
		Group:    "trainer.kubeflow.org",
		Version:  "v1alpha1",
		Resource: "trainingruntimes",
	}
	ClusterTrainingRuntimeGVR = schema.GroupVersionResource{
		Group:    "trainer.kubeflow.org",
		Version:  "v1alpha1",
		Resource: "clustertrainingruntimes",
	}
	DataSciencePipelinesApplicationGVR = schema.GroupVersionResource{
		Group:    "datasciencepipelinesapplications.opendatahub.io",
		Version:  "v1",
		Resource: "datasciencepipelinesapplications",
	}
	PipelineRunGVR = schema.GroupVersionResource{
		Group:    "tekton.dev",
		Version:  "v1",
		Resource: "pipelineruns",
	}
	InferenceServiceGVR = schema.GroupVersionResource{
		Group:    "serving.kserve.io",
		Version:  "v1beta1",
		Resource: "inferenceservices",
	}
	DataScienceClusterGVR = schema.GroupVersionResource{
		Group:    "datasciencecluster.opendatahub.io",
		Version:  "v1",
		Resource: "datascienceclusters",
	}
)

// ListKinds maps the custom resources used by the client to their list kinds.
var ListKinds = map[schema.GroupVersionResource]string{
	NotebookGVR:                        "NotebookList",
	TrainJobGVR:                        "TrainJobList",
	TrainingRuntimeGVR:                 "TrainingRuntimeList",
	ClusterTrainingRuntimeGVR:          "ClusterTrainingRuntimeList",
	DataSciencePipelinesApplicationGVR: "DataSciencePipelinesApplicationList",
	PipelineRunGVR:                     "PipelineRunList",
	InferenceServiceGVR:                "InferenceServiceList",
	DataScienceClusterGVR:              "DataScienceClusterList",
}

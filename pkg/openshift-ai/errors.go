package openshiftai

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrNotFound is wrapped by every "resource not found" error returned by the client.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is wrapped by the errors returned when the cluster does not serve a component.
var ErrUnavailable = errors.New("not available in this cluster")

// ErrInvalidArgument is wrapped by every argument validation error returned by the client.
var ErrInvalidArgument = errors.New("invalid argument")

func NotFoundError(resource, namespace, name string) error {
	if namespace == "" {
		return fmt.Errorf("%s '%s' %w", resource, name, ErrNotFound)
	}
	return fmt.Errorf("%s '%s' %w in project '%s'", resource, name, ErrNotFound, namespace)
}

func InvalidArgumentError(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, message)
}

func UnavailableError(component string) error {
	return fmt.Errorf("component '%s' is %w", component, ErrUnavailable)
}

// unavailableIfNotServed maps the 404 returned when listing a resource type the cluster does not serve.
func unavailableIfNotServed(err error, component string) error {
	if apierrors.IsNotFound(err) {
		return UnavailableError(component)
	}
	return err
}

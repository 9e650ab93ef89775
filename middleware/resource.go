package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gurbetbiz/account-service/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// unknownService is the default service name when detection fails
const unknownService = "unknown-service"

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// detectServiceInfo resolves the service name and namespace, in order:
// OTEL_SERVICE_NAME, the pod name with its replicaset and pod hashes stripped,
// then the configured service name.
func detectServiceInfo(svc config.ServiceConfig) (serviceName, namespace string) {
	serviceName = os.Getenv("OTEL_SERVICE_NAME")

	if serviceName == "" {
		// "account-service-75c98b4b9c-kdv2n" -> "account-service"
		if parts := strings.Split(os.Getenv("POD_NAME"), "-"); len(parts) >= 3 {
			serviceName = strings.Join(parts[:len(parts)-2], "-")
		}
	}
	if serviceName == "" {
		serviceName = svc.Name
	}
	if serviceName == "" {
		serviceName = unknownService
	}

	if attrs := os.Getenv("OTEL_RESOURCE_ATTRIBUTES"); attrs != "" {
		for _, attr := range strings.Split(attrs, ",") {
			kv := strings.SplitN(attr, "=", 2)
			if len(kv) == 2 && kv[0] == "service.namespace" {
				return serviceName, kv[1]
			}
		}
	}
	if data, err := os.ReadFile(serviceAccountNamespaceFile); err == nil {
		return serviceName, strings.TrimSpace(string(data))
	}
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return serviceName, ns
	}
	return serviceName, svc.Env
}

// CreateResource builds the OpenTelemetry resource shared by tracing and
// profiling. On partial detection failure it returns a minimal resource
// together with the error.
func CreateResource(ctx context.Context, svc config.ServiceConfig) (*resource.Resource, error) {
	serviceName, namespace := detectServiceInfo(svc)

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
			semconv.ServiceVersionKey.String(svc.Version),
			semconv.DeploymentEnvironmentKey.String(svc.Env),
		),
	)
	if err != nil {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceNamespaceKey.String(namespace),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}

// GetServiceName extracts service name from a resource
func GetServiceName(res *resource.Resource) string {
	if res == nil {
		return unknownService
	}
	for _, attr := range res.Attributes() {
		if attr.Key == semconv.ServiceNameKey {
			return attr.Value.AsString()
		}
	}
	return unknownService
}

// File: pkg/storage/gcp/gcp_test.go
package gcp

import (
	"fmt"
	"storemigrate/internal/config"
	"storemigrate/pkg/storage"
	"testing"
	"time"

	"cloud.google.com/go/iam"
	"cloud.google.com/go/iam/apiv1/iampb"
	monitoringpb "cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	gcpstorage "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestMapListing(t *testing.T) {
	attrs := []*gcpstorage.ObjectAttrs{
		{Prefix: "photos/2024/"},
		{Name: "photos/", Size: 0},
		{Name: "photos/a.png", ContentType: "image/png", Size: 42},
		nil,
	}

	assert.Equal(t, []storage.ListItem{
		{Name: "2024", IsDir: true},
		{Name: "a.png", ContentType: "image/png", Size: 42},
	}, mapListing("photos/", attrs))
}

func TestPolicyGrantsPublicRead(t *testing.T) {
	public := &iam.Policy{InternalProto: &iampb.Policy{Bindings: []*iampb.Binding{
		{Role: string(objectViewerRole), Members: []string{"allUsers"}},
	}}}
	private := &iam.Policy{InternalProto: &iampb.Policy{Bindings: []*iampb.Binding{
		{Role: string(objectViewerRole), Members: []string{"user:ops@example.com"}},
	}}}

	assert.True(t, policyGrantsPublicRead(public))
	assert.False(t, policyGrantsPublicRead(private))
	assert.False(t, policyGrantsPublicRead(nil))
}

func TestHasStatus(t *testing.T) {
	err := fmt.Errorf("create: %w", &googleapi.Error{Code: 409, Message: "conflict"})
	assert.True(t, hasStatus(err, 409))
	assert.False(t, hasStatus(err, 412))
	assert.False(t, hasStatus(fmt.Errorf("plain"), 409))
}

func TestExtractUsageValue(t *testing.T) {
	assert.Equal(t, int64(3), extractUsageValue(&monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: 2.6}}))
	assert.Equal(t, int64(7), extractUsageValue(&monitoringpb.TypedValue{Value: &monitoringpb.TypedValue_Int64Value{Int64Value: 7}}))
	assert.Equal(t, int64(0), extractUsageValue(nil))
}

func TestUsageRequest(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req := usageRequest("my-project", now)

	assert.Equal(t, "projects/my-project", req.GetName())
	assert.Equal(t, now.Add(-metricTimeWindow).Unix(), req.GetInterval().GetStartTime().GetSeconds())
	assert.Equal(t, []string{"resource.labels.bucket_name"}, req.GetAggregation().GetGroupByFields())
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, isConfigured(config.EndpointConfig{Project: "p"}))
	assert.False(t, isConfigured(config.EndpointConfig{URL: "http://localhost:4443"}))
}

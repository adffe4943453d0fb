package apiclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Alia5/padmapper/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient answers from responses keyed by unfilled path patterns. A
// non-nil err fails every request.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		return responses[path], nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		responses  map[string]string
		err        error
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name:      "bus create",
			responses: map[string]string{"bus/create": `{"busId":42}`},
			call:      func(c *apiclient.Client) (any, error) { return c.BusCreate(ctx, 42) },
			assertFunc: func(t *testing.T, got any) {
				r, ok := got.(*apiclient.BusCreateResponse)
				require.True(t, ok)
				assert.Equal(t, uint32(42), r.BusID)
			},
		},
		{
			name:      "structured error",
			responses: map[string]string{"bus/create": `{"status":400,"title":"Bad Request","detail":"invalid busId"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.BusCreate(ctx, 0) },
			wantErr:   "400 Bad Request: invalid busId",
		},
		{
			name:      "device add",
			responses: map[string]string{"bus/{id}/add": `{"busId":1,"devId":"2","vid":"0x1234","pid":"0xabcd","type":"keyboard"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.DeviceAdd(ctx, 1, "keyboard") },
			assertFunc: func(t *testing.T, got any) {
				d := got.(*apiclient.Device)
				assert.Equal(t, "2", d.DevID)
				assert.Equal(t, "keyboard", d.Type)
			},
		},
		{
			name:      "device remove",
			responses: map[string]string{"bus/{id}/remove": `{"busId":1,"devId":"2"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.DeviceRemove(ctx, 1, "2") },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, "2", got.(*apiclient.DeviceRemoveResponse).DevID)
			},
		},
		{
			name:      "bus list",
			responses: map[string]string{"bus/list": `{"buses":[1,3]}`},
			call:      func(c *apiclient.Client) (any, error) { return c.BusList(ctx) },
			assertFunc: func(t *testing.T, got any) {
				assert.Equal(t, []uint32{1, 3}, got.(*apiclient.BusListResponse).Buses)
			},
		},
		{
			name:    "transport failure",
			err:     errors.New("dial fail"),
			call:    func(c *apiclient.Client) (any, error) { return c.BusList(ctx) },
			wantErr: "dial fail",
		},
		{
			name:    "blank response",
			call:    func(c *apiclient.Client) (any, error) { return c.Ping(ctx) },
			wantErr: "empty response",
		},
		{
			name:      "unknown field rejected",
			responses: map[string]string{"ping": `{"server":"viiper","version":"1","extra":true}`},
			call:      func(c *apiclient.Client) (any, error) { return c.Ping(ctx) },
			wantErr:   "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(tt.responses, tt.err)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestOpenStreamRejectsMock(t *testing.T) {
	c := testClient(nil, nil)
	_, err := c.OpenStream(context.Background(), 1, "1")
	assert.Error(t, err)
}

package taskapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/httpclient"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc, err := httpclient.NewHTTPClient(httpclient.DefaultHTTPClientConfig(), zerolog.Nop())
	require.NoError(t, err)
	return NewClientWithHTTP(server.URL+"/api/gpu-ocr-compare/", hc, map[string]string{"Authorization": "Bearer tok"}, zerolog.Nop())
}

func TestClient_GetTaskStatus_Envelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gpu-ocr-compare/task/abc", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":{"taskId":"abc","status":"OCR_PROCESSING","statusDescription":"OCR识别中","progress":37.5,"currentStepDesc":"OCR识别原文档","oldDocPages":10,"completedPagesOld":5,"estimatedOcrTimeOld":30000}}`))
	})

	status, err := client.GetTaskStatus(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, models.TaskOCRProcessing, status.Status)
	assert.Equal(t, "OCR识别中", status.StatusDescription)
	assert.Equal(t, 37.5, status.Progress, "backend progress field is decoded")
	assert.Equal(t, "OCR识别原文档", status.CurrentStepDesc)
	assert.Equal(t, 10, status.OldDocPages)
	assert.Equal(t, 5, status.CompletedPagesOld)
	assert.Equal(t, 30000.0, status.EstimatedOcrTimeOld)
}

func TestClient_GetTaskStatus_Bare(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"COMPLETED","progress":100}`))
	})

	status, err := client.GetTaskStatus(context.Background(), "xyz")

	require.NoError(t, err)
	assert.Equal(t, "xyz", status.TaskID, "task id filled from the request")
	assert.True(t, status.Status.IsCompleted())
	assert.Equal(t, 100.0, status.Progress)
}

func TestClient_GetCompareResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gpu-ocr-compare/canvas-result/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":200,"data":{
			"oldFileName":"a.pdf","newFileName":"b.pdf",
			"oldImageInfo":{"totalPages":1,"pages":[{"width":800,"height":1000}]},
			"newImageInfo":{"totalPages":1,"pages":[{"width":800,"height":1000}]},
			"oldImageBaseUrl":"/files/old",
			"differences":[{"operation":"DELETE","pageA":1,"oldBbox":[10,10,100,50]}]}}`))
	})

	result, err := client.GetCompareResult(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "abc", result.TaskID)
	assert.Equal(t, "a.pdf", result.OldFileName)
	assert.Equal(t, 1, result.OldImageInfo.TotalPages)
	assert.Equal(t, "/files/old", result.ImageBaseURL(models.SideOld))
	require.Len(t, result.Differences, 1)
	assert.Equal(t, models.OperationDelete, result.Differences[0].Operation)
}

func TestClient_GetCompareResult_NotReady(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":202,"message":"任务尚未完成","data":{"success":false}}`))
	})

	_, err := client.GetCompareResult(context.Background(), "abc")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "任务尚未完成", apiErr.Message)
}

func TestClient_EnvelopeNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":404,"message":"任务不存在"}`))
	})

	_, err := client.GetTaskStatus(context.Background(), "missing")

	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestClient_HTTPErrors(t *testing.T) {
	t.Run("enveloped 500", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":500,"message":"获取Canvas比对结果失败","errorDetail":"npe"}`))
		})
		_, err := client.GetCompareResult(context.Background(), "abc")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 500, apiErr.Code)
		assert.Contains(t, err.Error(), "npe")
	})

	t.Run("plain 404", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		_, err := client.GetTaskStatus(context.Background(), "abc")

		assert.True(t, errors.Is(err, common.ErrNotFound))
	})

	t.Run("plain 502", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})
		_, err := client.GetTaskStatus(context.Background(), "abc")

		var httpErr *common.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	})

	t.Run("garbage body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})
		_, err := client.GetTaskStatus(context.Background(), "abc")

		assert.True(t, errors.Is(err, errNotEnvelope))
	})
}

func TestClient_DeleteTask(t *testing.T) {
	var method string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_, _ = w.Write([]byte(`{"code":200,"message":"删除成功"}`))
	})

	require.NoError(t, client.DeleteTask(context.Background(), "abc"))
	assert.Equal(t, http.MethodDelete, method)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	api := config.NewDefaultAPIConfig()
	api.BaseURL = ""

	_, err := NewClient(api, nil, zerolog.Nop())

	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestDecodeCompareResult(t *testing.T) {
	wrapped, err := DecodeCompareResult([]byte(`{"code":200,"data":{"taskId":"t9","oldFileName":"a.pdf","differences":[{"operation":"DELETE","pageA":1}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "t9", wrapped.TaskID)
	require.Len(t, wrapped.Differences, 1)

	bare, err := DecodeCompareResult([]byte(`{"taskId":"t10","newFileName":"b.pdf"}`))
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", bare.NewFileName)

	_, err = DecodeCompareResult([]byte(`not json`))
	assert.Error(t, err)
}

package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-bond/disks"
	"github.com/go-resty/resty/v2"
)

type inspectClient struct {
	client *resty.Client

	baseURL string
	headers map[string]string

	algorithmsURL   string
	reportFieldsURL string
	sortURL         string
	historyURL      string
}

func NewInspectRemote(url string, headers map[string]string) Inspect {
	url = strings.TrimSuffix(url, "/")

	return &inspectClient{
		client:          resty.New(),
		baseURL:         url,
		headers:         headers,
		algorithmsURL:   fmt.Sprintf("%s%s", url, AlgorithmsPath),
		reportFieldsURL: fmt.Sprintf("%s%s", url, ReportFieldsPath),
		sortURL:         fmt.Sprintf("%s%s", url, SortPath),
		historyURL:      fmt.Sprintf("%s%s", url, HistoryPath),
	}
}

func (i *inspectClient) Algorithms() ([]string, error) {
	return post[[]string](context.Background(), i, i.algorithmsURL, nil)
}

func (i *inspectClient) ReportFields() (map[string]string, error) {
	return post[map[string]string](context.Background(), i, i.reportFieldsURL, nil)
}

func (i *inspectClient) Sort(ctx context.Context, algorithm string, lightCount int) (*disks.SortReport, error) {
	rqStruct := requestSort{Algorithm: algorithm, LightCount: lightCount}
	return post[*disks.SortReport](ctx, i, i.sortURL, rqStruct)
}

func (i *inspectClient) History(ctx context.Context, algorithm string, lightCount int, limit uint64) ([]*disks.SortReport, error) {
	rqStruct := requestHistory{
		requestSort: requestSort{Algorithm: algorithm, LightCount: lightCount},
		Limit:       limit,
	}
	return post[[]*disks.SortReport](ctx, i, i.historyURL, rqStruct)
}

func post[T any](ctx context.Context, i *inspectClient, url string, rqStruct any) (T, error) {
	var result T

	req := i.client.R().
		SetContext(ctx).
		SetHeaders(i.headers)

	if rqStruct != nil {
		rqData, err := json.Marshal(rqStruct)
		if err != nil {
			return result, err
		}
		req = req.SetHeader("Content-Type", "application/json").SetBody(rqData)
	}

	resp, err := req.Post(url)
	if err != nil {
		return result, err
	}

	if resp.IsError() {
		var respErr responseError
		if json.Unmarshal(resp.Body(), &respErr) == nil && respErr.Error != "" {
			return result, fmt.Errorf("request failed with status: %s: %s", resp.Status(), respErr.Error)
		}
		return result, fmt.Errorf("request failed with status: %s", resp.Status())
	}

	err = json.Unmarshal(resp.Body(), &result)
	if err != nil {
		return result, err
	}

	return result, nil
}

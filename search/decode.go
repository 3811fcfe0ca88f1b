package search

import (
	"fmt"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/mitchellh/mapstructure"
)

// decodeRecord 将引擎返回的文档解码为 ImageRecord
func decodeRecord(hit any) (*models.ImageRecord, error) {
	var rec models.ImageRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(hit); err != nil {
		return nil, fmt.Errorf("failed to decode search hit: %w", err)
	}
	return &rec, nil
}

// decodeRecords 批量解码，单条失败时整体失败
func decodeRecords(hits []any) ([]*models.ImageRecord, error) {
	records := make([]*models.ImageRecord, 0, len(hits))
	for _, hit := range hits {
		rec, err := decodeRecord(hit)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

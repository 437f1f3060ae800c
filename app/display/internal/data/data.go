package data

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/app/display/internal/conf"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/storage"
)

type Data struct {
	store storage.Store
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	if c == nil || c.Database == nil {
		return nil, nil, fmt.Errorf("data.database is required")
	}

	dbc := config.DBConfig{Driver: c.Database.Driver}
	switch c.Database.Driver {
	case "postgres":
		dbc.Source = c.Database.Source
	case "badger":
		dbc.BadgerPath = c.Database.Source
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	store, err := storage.New(dbc)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		store.Close()
	}
	return &Data{store: store}, cleanup, nil
}

// NewDataWithStore 测试与嵌入场景下直接注入存储
func NewDataWithStore(store storage.Store) *Data {
	return &Data{store: store}
}

// Store 底层文档存储，供流水线引擎共享
func (d *Data) Store() storage.Store {
	return d.store
}

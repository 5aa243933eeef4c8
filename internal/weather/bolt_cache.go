package weather

import (
	"encoding/json"

	"github.com/boltdb/bolt"
)

const weatherBucket = "weather"

type boltCache struct {
	db *bolt.DB
}

// NewBoltCache creates a Cache backed by BoltDB so the last known
// reports survive a restart.
func NewBoltCache(d *bolt.DB) Cache {
	return &boltCache{
		db: d,
	}
}

func (b *boltCache) Put(city string, report Report) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(weatherBucket))
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(report)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(CacheKey(city)), encoded)
	})
}

func (b *boltCache) Get(city string) (Report, bool, error) {
	var (
		report Report
		found  bool
	)

	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(weatherBucket))
		// nothing has been cached yet
		if bucket == nil {
			return nil
		}

		val := bucket.Get([]byte(CacheKey(city)))
		if val == nil {
			return nil
		}

		found = true
		return json.Unmarshal(val, &report)
	})
	if err != nil {
		return Report{}, false, err
	}

	return report, found, nil
}

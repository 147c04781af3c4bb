package models

import stac "github.com/planetlabs/go-stac"

type (
	Collection = stac.Collection
	Item       = stac.Item
	Link       = stac.Link
)

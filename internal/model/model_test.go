package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSectionKind(t *testing.T) {
	kind, err := ParseSectionKind("business")
	require.NoError(t, err)
	assert.Equal(t, SectionBusiness, kind)

	kind, err = ParseSectionKind(" MDA ")
	require.NoError(t, err)
	assert.Equal(t, SectionMDA, kind)

	_, err = ParseSectionKind("cover")
	require.Error(t, err)
}

func TestSectionKind_Accessors(t *testing.T) {
	assert.Equal(t, "business", SectionBusiness.String())
	assert.Equal(t, "item_1_business", SectionBusiness.Filter())
	assert.Equal(t, "Item 1. Business", SectionBusiness.Title())
	assert.Len(t, SectionBusiness.Checklist(), 5)

	assert.Equal(t, "mda", SectionMDA.String())
	assert.Equal(t, "item_7_mda", SectionMDA.Filter())
	assert.Contains(t, SectionMDA.Title(), "Management's Discussion and Analysis")
	assert.Len(t, SectionMDA.Checklist(), 7)
}

func TestProvidedData_Empty(t *testing.T) {
	var nilData *ProvidedData
	assert.True(t, nilData.Empty())
	assert.True(t, (&ProvidedData{}).Empty())
	assert.False(t, (&ProvidedData{Narrative: "text"}).Empty())
	assert.False(t, (&ProvidedData{Fields: map[string]string{"Revenue": "1"}}).Empty())
}

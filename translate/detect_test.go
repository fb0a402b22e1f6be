package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsChinese(t *testing.T) {
	assert.True(t, ContainsChinese("连衣裙"))
	assert.True(t, ContainsChinese("size 大码"))
	assert.False(t, ContainsChinese("원피스"))
	assert.False(t, ContainsChinese("dress"))
	assert.False(t, ContainsChinese(""))
}

func TestAttributesHaveChinese(t *testing.T) {
	assert.True(t, AttributesHaveChinese(ImageInfo{Alt: "夏季新款"}))
	assert.True(t, AttributesHaveChinese(ImageInfo{Title: "包邮"}))
	assert.True(t, AttributesHaveChinese(ImageInfo{DataText: "材质:棉"}))
	assert.True(t, AttributesHaveChinese(ImageInfo{Src: "https://cbu01.alicdn.com/img/商品.jpg"}))
	assert.False(t, AttributesHaveChinese(ImageInfo{Alt: "product", Title: "상품", Src: "https://cbu01.alicdn.com/img/p.jpg"}))
}

func TestTooSmall(t *testing.T) {
	assert.True(t, TooSmall(ImageInfo{Width: 49, Height: 200}))
	assert.True(t, TooSmall(ImageInfo{Width: 200, Height: 30}))
	assert.False(t, TooSmall(ImageInfo{Width: 50, Height: 50}))
	// Unknown dimensions are not grounds for skipping.
	assert.False(t, TooSmall(ImageInfo{}))
}

func TestAttributeDetector(t *testing.T) {
	d := AttributeDetector{}

	has, err := d.HasChinese(context.Background(), chineseImage(1))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = d.HasChinese(context.Background(), plainImage(1))
	require.NoError(t, err)
	assert.False(t, has)

	// Icon-sized images are skipped even with Chinese attributes.
	small := chineseImage(1)
	small.Width, small.Height = 32, 32
	has, err = d.HasChinese(context.Background(), small)
	require.NoError(t, err)
	assert.False(t, has)
}

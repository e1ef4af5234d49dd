package path

import "fmt"

// suggest 用 Levenshtein 距离找最接近的候选
func suggest(unknown string, candidates []string) string {
	minDistance := 1000
	var bestMatch string

	for _, c := range candidates {
		dist := levenshteinDistance(unknown, c)
		if dist < minDistance {
			minDistance = dist
			bestMatch = c
		}
	}

	// 距离太大时不提示
	if bestMatch == "" || minDistance >= 5 {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", bestMatch)
}

// levenshteinDistance 计算编辑距离
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // 删除
				matrix[i][j-1]+1,      // 插入
				matrix[i-1][j-1]+cost, // 替换
			)
		}
	}

	return matrix[len1][len2]
}

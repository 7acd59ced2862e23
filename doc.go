// Package cog implements cluster-guided oversampling for binary
// class-imbalanced tabular data.
//
// The training set is partitioned into K clusters. For each cluster in turn,
// synthetic minority rows are proposed with SMOTE toward a target imbalance
// ratio, a fresh classifier is trained on the whole working dataset, and the
// proposal is kept only if it raises the validation G-mean above the best
// score seen so far. A cluster is abandoned after Patience consecutive
// proposals that do not improve the score.
//
// Basic usage:
//
//	cfg := cog.DefaultConfig()
//	cfg.Clusters = 5
//	cfg.TargetIR = 0.8
//	result, err := cog.Run("data.csv", cfg)
//	// result.Score is the test-set G-mean of the final model
//	// result.SyntheticCount is the number of accepted synthetic rows
//
// For data already in memory:
//
//	result, err := cog.RunDataset(ds, cfg)
//
// # Collaborators
//
// The classifier, the clustering algorithm and the synthetic generator are
// interfaces. The defaults are a CART decision tree ([DecisionTree]),
// k-means++ ([KMeans]) and SMOTE ([SMOTE]); any implementation of
// [Classifier], [Clusterer] or [Generator] can be substituted through
// [Config].
package cog
